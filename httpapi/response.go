package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// Filename is the name offered for every generated document.
const Filename = "THE_ONE.pdf"

// Message is the JSON body of an error response.
type Message struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

// writePDF writes an inline, uncacheable PDF response.
func writePDF(w http.ResponseWriter, log *slog.Logger, data []byte, warnings int) {
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", Filename))
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	if warnings > 0 {
		h.Set("X-Formfill-Warnings", strconv.Itoa(warnings))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("writing PDF to response", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.Error("writing JSON to response", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg, detail string) {
	writeJSON(w, log, status, Message{Type: "error", Message: msg, Detail: detail})
}
