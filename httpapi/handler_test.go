package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/fields"
)

type fakeRenderer struct {
	pdf      []byte
	warnings []string
	err      error
	panics   bool
	got      fields.Record
}

func (f *fakeRenderer) Generate(_ context.Context, rec fields.Record) (*formfill.Result, error) {
	if f.panics {
		panic("boom")
	}
	f.got = rec
	if f.err != nil {
		return nil, f.err
	}
	return &formfill.Result{PDF: f.pdf, Warnings: f.warnings}, nil
}

func (f *fakeRenderer) Diagnose(_ context.Context, rec fields.Record) (*formfill.Diagnostics, error) {
	f.got = rec
	if f.err != nil {
		return nil, f.err
	}
	return &formfill.Diagnostics{Record: rec, TemplatePath: "template.pdf"}, nil
}

func (f *fakeRenderer) Baseline(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-baseline"), nil
}

func serve(t *testing.T, r Renderer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(r, nil).Routes().ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) Message {
	t.Helper()
	var m Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestOptions(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, httptest.NewRequest(http.MethodOptions, FillPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, rec.Body.Bytes())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, httptest.NewRequest(http.MethodPut, FillPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", decodeMessage(t, rec).Message)
}

func TestPostReturnsPDF(t *testing.T) {
	r := &fakeRenderer{pdf: []byte("%PDF-1.4 filled"), warnings: []string{"font not found"}}
	rec := serve(t, r, post(`{"data": {"name": "Kim"}}`, "application/json"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="THE_ONE.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "1", rec.Header().Get("X-Formfill-Warnings"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "%PDF-1.4 filled", rec.Body.String())
	assert.Equal(t, fields.Record{"name": "Kim"}, r.got)
}

func TestEmptyGetRedirects(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, httptest.NewRequest(http.MethodGet, FillPath, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, BaselinePath, rec.Header().Get("Location"))
}

func TestGetWithQueryRenders(t *testing.T) {
	r := &fakeRenderer{pdf: []byte("%PDF")}
	rec := serve(t, r, httptest.NewRequest(http.MethodGet, FillPath+"?name=Kim", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fields.Record{"name": "Kim"}, r.got)
	assert.Empty(t, rec.Header().Get("X-Formfill-Warnings"))
}

func TestBaselineRoute(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, httptest.NewRequest(http.MethodGet, BaselinePath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-baseline", rec.Body.String())

	rec = serve(t, &fakeRenderer{}, httptest.NewRequest(http.MethodPost, BaselinePath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDebugReturnsDiagnostics(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, post(`{"data": {"name": "Kim"}, "debug": true}`, "application/json"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var d formfill.Diagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "template.pdf", d.TemplatePath)
	assert.Equal(t, "Kim", d.Record["name"])
}

func TestBadRequest(t *testing.T) {
	rec := serve(t, &fakeRenderer{}, post(`{"name":`, "application/json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m := decodeMessage(t, rec)
	assert.Equal(t, "error", m.Type)
	assert.Contains(t, m.Message, "bad request")
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"configuration", &formfill.ConfigurationError{Resource: "template", Path: "template.pdf", Err: formfill.ErrTemplateNotFound}, http.StatusBadRequest},
		{"mapping", &formfill.MappingParseError{Path: "TOP.json", Err: errors.New("bad")}, http.StatusInternalServerError},
		{"render", &formfill.RenderError{Op: "overlay", Err: errors.New("bad")}, http.StatusInternalServerError},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeRenderer{err: tt.err}, post(`{"name": "Kim"}`, "application/json"))
			assert.Equal(t, tt.code, rec.Code)
			m := decodeMessage(t, rec)
			assert.Equal(t, "error", m.Type)
			assert.NotEmpty(t, m.Message)
			assert.Empty(t, m.Detail)
		})
	}
}

func TestDebugErrorHasDetail(t *testing.T) {
	r := &fakeRenderer{err: &formfill.RenderError{Op: "plan", Err: errors.New("page 9 of 1")}}
	rec := serve(t, r, httptest.NewRequest(http.MethodGet, FillPath+"?debug=1&name=Kim", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeMessage(t, rec).Detail, "page 9 of 1")
}

func TestPanicRecovered(t *testing.T) {
	rec := serve(t, &fakeRenderer{panics: true}, post(`{"name": "Kim"}`, "application/json"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeMessage(t, rec).Message)
}

// TestEngineEndToEnd runs the handler against a real engine.
func TestEngineEndToEnd(t *testing.T) {
	root := t.TempDir()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	require.NoError(t, os.WriteFile(filepath.Join(root, "template.pdf"), buf.Bytes(), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mappings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mappings", "TOP.json"),
		[]byte(`{"fields": {"name": {"page": 1, "x": 100, "y": 100}}}`), 0o644))

	eng := formfill.New(formfill.WithRoot(root), formfill.WithFontCandidates(filepath.Join(root, "none.ttf")))
	rec := serve(t, eng, post("name=Kim", "application/x-www-form-urlencoded"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	assert.False(t, bytes.Equal(buf.Bytes(), rec.Body.Bytes()))
	assert.Equal(t, "1", rec.Header().Get("X-Formfill-Warnings"))

	rec = serve(t, eng, httptest.NewRequest(http.MethodGet, BaselinePath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Equal(buf.Bytes(), rec.Body.Bytes()))

	rm := filepath.Join(root, "template.pdf")
	require.NoError(t, os.Remove(rm))
	rec = serve(t, eng, post(`{"name": "Kim"}`, "application/json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
