// Package httpapi serves the form engine over HTTP.
//
// POST (or GET with query parameters) to FillPath returns the filled PDF.
// An empty GET is redirected to BaselinePath, which serves the unfilled
// template. Errors are JSON messages of the form
//
//	{"type": "error", "message": "...", "detail": "..."}
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/fields"
)

// Routes.
const (
	FillPath     = "/api/generate"
	BaselinePath = "/baseline.pdf"
)

// Renderer is the engine surface the handler needs. *formfill.Engine
// implements it.
type Renderer interface {
	Generate(ctx context.Context, rec fields.Record) (*formfill.Result, error)
	Diagnose(ctx context.Context, rec fields.Record) (*formfill.Diagnostics, error)
	Baseline(ctx context.Context) ([]byte, error)
}

var _ Renderer = (*formfill.Engine)(nil)

// Handler serves fill requests.
type Handler struct {
	renderer Renderer
	log      *slog.Logger
}

// New returns a Handler. logger may be nil.
func New(r Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{renderer: r, log: logger}
}

// Routes returns the full route table wrapped in panic recovery and
// request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(FillPath, h)
	mux.HandleFunc(BaselinePath, h.serveBaseline)
	return Recover(h.log, LogRequests(h.log, mux))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method Not Allowed", "")
		return
	}

	p, err := ParseRequest(r)
	if err != nil {
		h.fail(w, r, err, false)
		return
	}
	if r.Method == http.MethodGet && len(p.Record) == 0 && !p.Debug {
		http.Redirect(w, r, BaselinePath, http.StatusFound)
		return
	}

	ctx := r.Context()
	if p.Debug {
		d, err := h.renderer.Diagnose(ctx, p.Record)
		if err != nil {
			h.fail(w, r, err, true)
			return
		}
		writeJSON(w, h.log, http.StatusOK, d)
		return
	}

	res, err := h.renderer.Generate(ctx, p.Record)
	if err != nil {
		h.fail(w, r, err, false)
		return
	}
	writePDF(w, h.log, res.PDF, len(res.Warnings))
}

func (h *Handler) serveBaseline(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method Not Allowed", "")
		return
	}
	data, err := h.renderer.Baseline(r.Context())
	if err != nil {
		h.fail(w, r, err, false)
		return
	}
	writePDF(w, h.log, data, 0)
}

// fail converts err to a status and JSON message. With debug set the
// message carries the full error, including any stack trace.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	status, msg := classify(err)
	var detail string
	if debug {
		detail = fmt.Sprintf("%+v", err)
	}
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "status", status, "err", err)
	} else {
		h.log.WarnContext(r.Context(), "request rejected", "status", status, "err", err)
	}
	writeError(w, h.log, status, msg, detail)
}

func classify(err error) (int, string) {
	var (
		reqErr    *RequestError
		confErr   *formfill.ConfigurationError
		parseErr  *formfill.MappingParseError
		renderErr *formfill.RenderError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.As(err, &confErr):
		return http.StatusBadRequest, confErr.Error()
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError, parseErr.Error()
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, renderErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	}
	return http.StatusInternalServerError, err.Error()
}
