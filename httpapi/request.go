package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/lvillar/formfill/fields"
)

// MaxBodyBytes bounds a request body.
const MaxBodyBytes = 1 << 20

// RequestError reports a payload that could not be decoded.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("httpapi: bad request: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Payload is a decoded fill request.
type Payload struct {
	Record fields.Record
	Debug  bool
}

// ParseRequest decodes r. The record may arrive as
//
//   - a JSON body, either {"data": {...}} or the flat field map,
//   - a urlencoded form, optionally with a "data" field holding JSON,
//   - a raw body beginning with "data=",
//   - GET query parameters of the same shapes.
//
// A "debug" flag may be given as a query parameter or top-level field.
func ParseRequest(r *http.Request) (*Payload, error) {
	p := &Payload{Record: fields.Record{}}
	query := r.URL.Query()
	p.Debug = truthy(query.Get("debug"))

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if err := p.fromValues(query); err != nil {
			return nil, err
		}
		return p, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if len(body) > MaxBodyBytes {
		return nil, &RequestError{Err: errors.New("body too large")}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return p, nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || bytes.HasPrefix(body, []byte("data=")) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		if err := p.fromValues(values); err != nil {
			return nil, err
		}
		return p, nil
	}

	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	if err := p.fromObject(obj); err != nil {
		return nil, err
	}
	return p, nil
}

// fromValues reads form or query values. "data", when present, replaces
// the individual fields.
func (p *Payload) fromValues(values url.Values) error {
	if truthy(values.Get("debug")) {
		p.Debug = true
	}
	if raw := strings.TrimSpace(values.Get("data")); raw != "" {
		obj, err := decodeObject([]byte(raw))
		if err != nil {
			return err
		}
		return p.fromObject(map[string]any{"data": obj})
	}
	for k, vs := range values {
		if k == "debug" || len(vs) == 0 {
			continue
		}
		p.Record[k] = vs[0]
	}
	return nil
}

func (p *Payload) fromObject(obj map[string]any) error {
	if v, ok := obj["debug"]; ok {
		if truthyValue(v) {
			p.Debug = true
		}
		delete(obj, "debug")
	}
	if data, ok := obj["data"]; ok {
		if data == nil {
			return nil
		}
		m, ok := data.(map[string]any)
		if !ok {
			return &RequestError{Err: errors.New(`"data" must be an object`)}
		}
		obj = m
	}
	for k, v := range obj {
		p.Record[k] = v
	}
	return nil
}

func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &RequestError{Err: fmt.Errorf("decoding JSON: %w", err)}
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &RequestError{Err: errors.New("payload must be a JSON object")}
	}
	return m, nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func truthyValue(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return truthy(v)
	case json.Number:
		return v.String() != "0"
	}
	return false
}

// clientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the connection's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
