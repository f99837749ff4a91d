package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/slot"
)

type fakeSlots struct {
	listFn  func(ctx context.Context) ([]slot.Slot, error)
	checkFn func(ctx context.Context, date, timeOfDay string) (bool, error)
}

func (f *fakeSlots) ListAvailable(ctx context.Context) ([]slot.Slot, error) {
	if f.listFn == nil {
		panic("ListAvailable not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeSlots) CheckAvailability(ctx context.Context, date, timeOfDay string) (bool, error) {
	if f.checkFn == nil {
		panic("CheckAvailability not configured")
	}
	return f.checkFn(ctx, date, timeOfDay)
}

type fakeCatalog struct {
	listFn   func(ctx context.Context) ([]catalog.Package, error)
	createFn func(ctx context.Context, in catalog.CreateInput) (*catalog.Package, error)
}

func (f *fakeCatalog) List(ctx context.Context) ([]catalog.Package, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeCatalog) Create(ctx context.Context, in catalog.CreateInput) (*catalog.Package, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func newTestRouter(slots *fakeSlots, cat *fakeCatalog) http.Handler {
	if slots == nil {
		slots = &fakeSlots{}
	}
	if cat == nil {
		cat = &fakeCatalog{}
	}
	return NewRouter(RouterConfig{
		Slots:          slots,
		Catalog:        cat,
		Health:         NewHealthHandler("test", "v0"),
		Logger:         zap.NewNop(),
		RequestTimeout: time.Second,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body is not JSON: %q", rec.Body.String())
	return out
}

func mustSlot(t *testing.T, date, tod string) slot.Slot {
	t.Helper()
	d, err := slot.ParseDate(date)
	require.NoError(t, err)
	dur, err := slot.ParseTimeOfDay(tod)
	require.NoError(t, err)
	return slot.Slot{Date: d, TimeOfDay: dur, Status: slot.StatusAvailable}
}

func TestListSlots_Success(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		listFn: func(ctx context.Context) ([]slot.Slot, error) {
			return []slot.Slot{
				mustSlot(t, "2025-06-01", "09:00:00"),
				mustSlot(t, "2025-06-01", "10:00:00"),
				mustSlot(t, "2025-06-02", "09:00:00"),
			}, nil
		},
	}, nil)

	rec := do(t, h, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp SlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, SlotRecord{SlotDate: "2025-06-01", SlotTime: "09:00:00", DatetimeCombined: "2025-06-01T09:00:00"}, resp.Slots[0])
	assert.Equal(t, "2025-06-02T09:00:00", resp.Slots[2].DatetimeCombined)
}

func TestListSlots_EmptyIsArray(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		listFn: func(ctx context.Context) ([]slot.Slot, error) { return nil, nil },
	}, nil)

	rec := do(t, h, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"slots":[],"count":0}`, rec.Body.String())
}

func TestListSlots_StorageFailure(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		listFn: func(ctx context.Context) ([]slot.Slot, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}, nil)

	rec := do(t, h, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body["error"], "connection refused")
}

func TestCheckSlot(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		checkFn: func(ctx context.Context, date, timeOfDay string) (bool, error) {
			if date == "" {
				return false, &slot.ValidationError{Field: "date", Message: "date is required"}
			}
			return date == "2025-06-01" && timeOfDay == "09:00:00", nil
		},
	}, nil)

	rec := do(t, h, http.MethodGet, "/api/slots/check?date=2025-06-01&time=09:00:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"available":true,"date":"2025-06-01","time":"09:00:00"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/slots/check?date=2025-06-02&time=09:00:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	rec = do(t, h, http.MethodGet, "/api/slots/check?time=09:00:00", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date is required", decode(t, rec)["error"])
}

func TestListServices(t *testing.T) {
	h := newTestRouter(nil, &fakeCatalog{
		listFn: func(ctx context.Context) ([]catalog.Package, error) {
			return []catalog.Package{{ID: 1, Name: "Consultation", Price: 300, Currency: "RON", Features: []string{}}}, nil
		},
	})

	rec := do(t, h, http.MethodGet, "/api/services", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ServicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Consultation", resp.Data[0].Name)
}

func TestListServices_Failure(t *testing.T) {
	h := newTestRouter(nil, &fakeCatalog{
		listFn: func(ctx context.Context) ([]catalog.Package, error) { return nil, errors.New("boom") },
	})

	rec := do(t, h, http.MethodGet, "/api/services", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"failed to load services","data":[]}`, rec.Body.String())
}

func TestCreateService(t *testing.T) {
	var got catalog.CreateInput
	h := newTestRouter(nil, &fakeCatalog{
		createFn: func(ctx context.Context, in catalog.CreateInput) (*catalog.Package, error) {
			got = in
			return &catalog.Package{ID: 9, Name: in.Name, Price: in.Price, Currency: "RON", Status: "active", Features: []string{}}, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/api/services", `{"name":"Home visit","description":"At home","price":"450","popular":true,"features":["Scale"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(9), data["id"])

	assert.Equal(t, 450.0, got.Price)
	require.NotNil(t, got.Popular)
	assert.True(t, *got.Popular)
	assert.Nil(t, got.Currency)
	assert.Equal(t, []string{"Scale"}, got.Features)
}

func TestCreateService_Errors(t *testing.T) {
	h := newTestRouter(nil, &fakeCatalog{
		createFn: func(ctx context.Context, in catalog.CreateInput) (*catalog.Package, error) {
			if in.Name == "" {
				return nil, &catalog.ValidationError{Field: "name", Message: "Field 'name' is required"}
			}
			return nil, errors.New("insert failed")
		},
	})

	rec := do(t, h, http.MethodPost, "/api/services", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON data", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/services", `{"price":"abc"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/services", `{"description":"d","price":10}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Field 'name' is required", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/services", `{"name":"n","description":"d","price":10}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

type echoRepo struct{ created int }

func (r *echoRepo) ListActive(ctx context.Context) ([]catalog.Package, error) {
	return []catalog.Package{}, nil
}

func (r *echoRepo) Create(ctx context.Context, p catalog.Package) (*catalog.Package, error) {
	r.created++
	p.ID = int64(r.created)
	return &p, nil
}

func TestCreateService_RejectsUnstorablePrice(t *testing.T) {
	repo := &echoRepo{}
	h := NewRouter(RouterConfig{
		Slots:          &fakeSlots{},
		Catalog:        catalog.NewService(repo, nil, zap.NewNop()),
		Health:         NewHealthHandler("test", "v0"),
		Logger:         zap.NewNop(),
		RequestTimeout: time.Second,
	})

	for _, price := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`, `1e300`} {
		t.Run(price, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/services", `{"name":"a","description":"b","price":`+price+`}`)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], "price")
		})
	}
	assert.Zero(t, repo.created)

	rec := do(t, h, http.MethodPost, "/api/services", `{"name":"a","description":"b","price":"99999999.99"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]float64{"price": math.NaN()})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["error"])
}

func TestServices_UpdateAndDeleteNotImplemented(t *testing.T) {
	h := newTestRouter(nil, nil)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPut, "/api/services"},
		{http.MethodPut, "/api/services/3"},
		{http.MethodDelete, "/api/services"},
		{http.MethodDelete, "/api/services/3"},
	} {
		rec := do(t, h, tc.method, tc.target, "")
		assert.Equal(t, http.StatusNotImplemented, rec.Code, "%s %s", tc.method, tc.target)
		assert.Equal(t, false, decode(t, rec)["success"])
	}
}

func TestRouter_PreflightAndCORS(t *testing.T) {
	h := newTestRouter(nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/services", nil)
	req.Header.Set("Origin", "https://marina.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Plain OPTIONS without pre-flight headers is answered the same way.
	rec = do(t, h, http.MethodOptions, "/api/slots", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "https://marina.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_AlwaysJSON(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		listFn: func(ctx context.Context) ([]slot.Slot, error) { panic("nil map write") },
	}, nil)

	rec := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = do(t, h, http.MethodPost, "/api/slots", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = do(t, h, http.MethodGet, "/api/slots", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestRouter_RequestTimeoutReachesHandler(t *testing.T) {
	h := newTestRouter(&fakeSlots{
		listFn: func(ctx context.Context) ([]slot.Slot, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil, nil
		},
	}, nil)

	rec := do(t, h, http.MethodGet, "/api/slots", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	cases := []struct {
		name   string
		checks []DependencyCheck
		code   int
		status string
	}{
		{"all ok", []DependencyCheck{{Name: "postgres", Required: true, Ping: up}, {Name: "redis", Ping: up}}, http.StatusOK, "ok"},
		{"optional down", []DependencyCheck{{Name: "postgres", Required: true, Ping: up}, {Name: "redis", Ping: down}}, http.StatusOK, "degraded"},
		{"required down", []DependencyCheck{{Name: "postgres", Required: true, Ping: down}, {Name: "redis", Ping: up}}, http.StatusServiceUnavailable, "error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler("test", "v1", tc.checks...)
			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tc.code, rec.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.status, resp.Status)
			assert.Len(t, resp.Dependencies, len(tc.checks))
		})
	}
}
