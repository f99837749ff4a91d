package client

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

const previewLen = 200

// envelope is the {success, error, message} wrapper every endpoint shares.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *envelope) base() *envelope { return e }

type enveloped interface {
	base() *envelope
}

var markupPrefixes = [][]byte{
	[]byte("<!doctype"),
	[]byte("<html"),
	[]byte("<?xml"),
	[]byte("<head"),
	[]byte("<body"),
}

// looksLikeMarkup reports whether body is an HTML/XML document rather than JSON.
func looksLikeMarkup(body []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	head := bytes.ToLower(trimmed[:min(len(trimmed), 16)])
	for _, p := range markupPrefixes {
		if bytes.HasPrefix(head, p) {
			return true
		}
	}
	return false
}

func preview(body []byte) string {
	if len(body) <= previewLen {
		return string(body)
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

// classify decodes body into dst and decides the failure kind, if any.
// Markup is checked first because an HTML error page is a deployment
// defect whatever its status code. When requireSuccess is false the
// success flag is only trusted when the server also sent an error text.
func classify(status int, body []byte, dst enveloped, requireSuccess bool) *Error {
	if looksLikeMarkup(body) {
		return &Error{
			Kind:       KindWrongContentType,
			StatusCode: status,
			Message:    "server returned a markup document instead of JSON",
			Preview:    preview(body),
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		if !is2xx(status) {
			return &Error{Kind: KindServer, StatusCode: status, Preview: preview(body), Err: err}
		}
		return &Error{
			Kind:       KindMalformedPayload,
			StatusCode: status,
			Message:    "response is not valid JSON",
			Preview:    preview(body),
			Err:        err,
		}
	}

	env := dst.base()
	if !is2xx(status) {
		return &Error{Kind: KindServer, StatusCode: status, Message: serverText(env), Preview: preview(body)}
	}

	if !env.Success && (requireSuccess || env.Error != "") {
		return &Error{Kind: KindApplication, StatusCode: status, Message: serverText(env), Preview: preview(body)}
	}

	return nil
}

func serverText(env *envelope) string {
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}
