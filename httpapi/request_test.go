package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/formfill/fields"
)

func post(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, FillPath, strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   *http.Request
		want  fields.Record
		debug bool
	}{
		{
			name: "json wrapped",
			req:  post(`{"data": {"name": "Kim", "agree": true}}`, "application/json"),
			want: fields.Record{"name": "Kim", "agree": true},
		},
		{
			name: "json flat",
			req:  post(`{"name": "Kim", "age": 30}`, "application/json"),
			want: fields.Record{"name": "Kim", "age": json.Number("30")},
		},
		{
			name:  "json debug flag",
			req:   post(`{"data": {"name": "Kim"}, "debug": true}`, "application/json"),
			want:  fields.Record{"name": "Kim"},
			debug: true,
		},
		{
			name: "urlencoded fields",
			req:  post("name=Kim&phone=010", "application/x-www-form-urlencoded"),
			want: fields.Record{"name": "Kim", "phone": "010"},
		},
		{
			name: "urlencoded data",
			req:  post(`data=%7B%22name%22%3A%22Kim%22%7D`, "application/x-www-form-urlencoded"),
			want: fields.Record{"name": "Kim"},
		},
		{
			name: "raw data prefix",
			req:  post(`data={"name":"Kim"}`, "text/plain"),
			want: fields.Record{"name": "Kim"},
		},
		{
			name: "empty body",
			req:  post("", ""),
			want: fields.Record{},
		},
		{
			name: "json null data",
			req:  post(`{"data": null}`, "application/json"),
			want: fields.Record{},
		},
		{
			name:  "get query",
			req:   httptest.NewRequest(http.MethodGet, FillPath+"?name=Kim&debug=1", nil),
			want:  fields.Record{"name": "Kim"},
			debug: true,
		},
		{
			name: "get query data",
			req:  httptest.NewRequest(http.MethodGet, FillPath+`?data=%7B%22name%22%3A%22Kim%22%7D`, nil),
			want: fields.Record{"name": "Kim"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRequest(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Record)
			assert.Equal(t, tt.debug, p.Debug)
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	for name, req := range map[string]*http.Request{
		"bad json":      post(`{"name": `, "application/json"),
		"array":         post(`[1, 2]`, "application/json"),
		"data not obj":  post(`{"data": "x"}`, "application/json"),
		"bad form data": post(`data=%7Bnope`, "application/x-www-form-urlencoded"),
		"too large":     post(`{"a":"`+strings.Repeat("x", MaxBodyBytes)+`"}`, "application/json"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRequest(req)
			var rerr *RequestError
			assert.ErrorAs(t, err, &rerr)
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
