package pdf

import (
	"github.com/a3tai/pdf-field-stamper/internal/audit"
	"github.com/a3tai/pdf-field-stamper/internal/pdf/stamp"
)

// OutputRoute is the URL path under which generated documents are served
const OutputRoute = "/output"

// Request Types

// GenerateSignedPDFRequest represents a request to bake field placements into a document
type GenerateSignedPDFRequest struct {
	PDFURL string        `json:"pdfUrl"`
	Fields []stamp.Field `json:"fields"`
}

// DocumentInfoRequest represents a request to describe a source document
type DocumentInfoRequest struct {
	PDFURL string `json:"pdfUrl"`
}

// VerifyOutputRequest represents a request to check a generated document against its audit record
type VerifyOutputRequest struct {
	ID string `json:"id"`
}

// Response Types

// GenerateSignedPDFResult represents the result of a stamping operation
type GenerateSignedPDFResult struct {
	Success      bool   `json:"success"`
	SignedPDFURL string `json:"signedPdfUrl"`
	OriginalHash string `json:"originalHash"`
	FinalHash    string `json:"finalHash"`
	ID           string `json:"id,omitempty"`
}

// DocumentInfoResult describes a source document so the editor can size its canvas
type DocumentInfoResult struct {
	PDFURL      string  `json:"pdfUrl"`
	Size        int64   `json:"size"`
	MaxFileSize int64   `json:"maxFileSize"`
	Pages       int     `json:"pages"`
	PageWidth   float64 `json:"pageWidth"`
	PageHeight  float64 `json:"pageHeight"`
	Hash        string  `json:"hash"`
}

// VerifyOutputResult represents the result of an audit verification
type VerifyOutputResult struct {
	Success  bool          `json:"success"`
	Record   *audit.Record `json:"record"`
	Verified bool          `json:"verified"`
}

// ErrorResult is the body returned for any failed request
type ErrorResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
