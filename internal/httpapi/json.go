package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/a3tai/pdf-field-stamper/internal/audit"
	"github.com/a3tai/pdf-field-stamper/internal/pdf"
)

// ReadJSON decodes a single JSON value from the request body, reading at most limit bytes
func ReadJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("request body must contain a single JSON value")
	}
	return nil
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// WriteError writes the {success:false, message} failure body
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, pdf.ErrorResult{Success: false, Message: message})
}

// isDocumentPath reports whether an /output request names a generated PDF
func isDocumentPath(p string) bool {
	name := path.Base(p)
	return strings.HasPrefix(name, audit.OutputPrefix) && strings.HasSuffix(name, ".pdf")
}
