// Package client talks to the booking API and classifies every failure into
// a single ErrorKind at the point the response is read.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
)

const (
	slotsPath    = "/api/slots"
	checkPath    = "/api/slots/check"
	servicesPath = "/api/services"

	maxBodyBytes = 4 << 20
)

// Slot is one bookable slot as the API reports it.
type Slot struct {
	SlotDate         string `json:"slot_date"`
	SlotTime         string `json:"slot_time"`
	DatetimeCombined string `json:"datetime_combined"`
}

type slotsEnvelope struct {
	envelope
	Slots []Slot `json:"slots"`
	Count int    `json:"count"`
}

type checkEnvelope struct {
	envelope
	Available bool `json:"available"`
}

type servicesEnvelope struct {
	envelope
	Data  []catalog.Package `json:"data"`
	Count int               `json:"count"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, for tests or custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSlots returns the currently bookable slots in server order.
func (c *Client) FetchSlots(ctx context.Context) ([]Slot, error) {
	var env slotsEnvelope
	if err := c.get(ctx, slotsPath, nil, &env, true); err != nil {
		return nil, err
	}
	if env.Slots == nil {
		return []Slot{}, nil
	}
	return env.Slots, nil
}

// CheckAvailability asks whether a single slot can still be booked.
// timeOfDay may be "HH:MM" or "HH:MM:SS".
func (c *Client) CheckAvailability(ctx context.Context, date, timeOfDay string) (bool, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", NormalizeTime(timeOfDay))

	var env checkEnvelope
	if err := c.get(ctx, checkPath, q, &env, false); err != nil {
		return false, err
	}
	return env.Available, nil
}

// FetchServices returns the active service packages.
func (c *Client) FetchServices(ctx context.Context) ([]catalog.Package, error) {
	var env servicesEnvelope
	if err := c.get(ctx, servicesPath, nil, &env, true); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []catalog.Package{}, nil
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst enveloped, requireSuccess bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return connectivity(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return connectivity(ctx, err)
	}

	if cerr := classify(resp.StatusCode, body, dst, requireSuccess); cerr != nil {
		return cerr
	}
	return nil
}

// connectivity wraps a transport failure. Caller cancellation is passed
// through unchanged so callers can tell it apart from a broken network.
func connectivity(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	return &Error{
		Kind:    KindConnectivity,
		Message: "request failed before a response was read",
		Err:     err,
	}
}

// NormalizeTime turns "HH:MM" into "HH:MM:00". Anything else is returned as is.
func NormalizeTime(t string) string {
	t = strings.TrimSpace(t)
	if len(t) == 5 && t[2] == ':' {
		return t + ":00"
	}
	return t
}
