package pdf

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/a3tai/pdf-field-stamper/internal/audit"
	"github.com/a3tai/pdf-field-stamper/internal/pdf/security"
	"github.com/a3tai/pdf-field-stamper/internal/pdf/stamp"
)

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize     int64
	SourceDirectory string
	OutputDirectory string
	Debug           bool
}

// Service handles stamping requests by orchestrating the path resolver, the
// validator, the stamper and the audit store
type Service struct {
	maxFileSize   int64
	debug         bool
	validator     *Validator
	stamper       *stamp.Stamper
	store         *audit.Store
	pathValidator *security.PathValidator
	now           func() time.Time
}

// NewService creates a new stamping service with all components
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive")
	}

	pathValidator, err := security.NewPathValidator(opts.SourceDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	store, err := audit.NewStore(opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit store: %w", err)
	}

	return &Service{
		maxFileSize:   opts.MaxFileSize,
		debug:         opts.Debug,
		validator:     NewValidator(opts.MaxFileSize),
		stamper:       stamp.NewStamper(opts.Debug),
		store:         store,
		pathValidator: pathValidator,
		now:           time.Now,
	}, nil
}

// GenerateSignedPDF stamps req.Fields onto the document at req.PDFURL, writes
// the result to the output directory and returns its location and audit hashes
func (s *Service) GenerateSignedPDF(ctx context.Context, req GenerateSignedPDFRequest) (*GenerateSignedPDFResult, error) {
	path, err := s.pathValidator.ResolveURL(req.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	src, err := s.readSource(path)
	if err != nil {
		return nil, err
	}
	originalHash := audit.HashHex(src)

	stamped, err := s.stamper.Stamp(ctx, src, req.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp %s: %w", req.PDFURL, err)
	}
	finalHash := audit.HashHex(stamped)

	id := audit.NewID()
	if _, err := s.store.WriteDocument(id, stamped); err != nil {
		return nil, err
	}

	location := OutputRoute + "/" + audit.DocumentName(id)
	rec := &audit.Record{
		ID:             id,
		Source:         req.PDFURL,
		OriginalHash:   originalHash,
		FinalHash:      finalHash,
		OutputLocation: location,
		FieldCount:     len(req.Fields),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Save(rec); err != nil {
		if rmErr := s.store.Remove(id); rmErr != nil {
			log.Printf("Failed to clean up %s after record error: %v", id, rmErr)
		}
		return nil, err
	}

	if s.debug {
		log.Printf("Stamped %d fields onto %s -> %s", len(req.Fields), req.PDFURL, location)
	}

	return &GenerateSignedPDFResult{
		Success:      true,
		SignedPDFURL: location,
		OriginalHash: originalHash,
		FinalHash:    finalHash,
		ID:           id,
	}, nil
}

// DocumentInfo describes the source document at req.PDFURL
func (s *Service) DocumentInfo(req DocumentInfoRequest) (*DocumentInfoResult, error) {
	path, err := s.pathValidator.ResolveURL(req.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	pages, err := s.validator.ValidateSource(path)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.PDFURL, err)
	}

	width, height, err := s.stamper.PageSize(src)
	if err != nil {
		return nil, fmt.Errorf("failed to measure %s: %w", req.PDFURL, err)
	}

	return &DocumentInfoResult{
		PDFURL:      req.PDFURL,
		Size:        int64(len(src)),
		MaxFileSize: s.GetMaxFileSize(),
		Pages:       pages,
		PageWidth:   width,
		PageHeight:  height,
		Hash:        audit.HashHex(src),
	}, nil
}

// VerifyOutput re-hashes a generated document and compares it with its audit record
func (s *Service) VerifyOutput(req VerifyOutputRequest) (*VerifyOutputResult, error) {
	verification, err := s.store.Verify(req.ID)
	if err != nil {
		return nil, err
	}

	return &VerifyOutputResult{
		Success:  true,
		Record:   verification.Record,
		Verified: verification.Verified,
	}, nil
}

// OutputDirectory returns the directory generated documents are written to
func (s *Service) OutputDirectory() string {
	return s.store.Dir()
}

// SourceDirectory returns the root source documents are resolved against
func (s *Service) SourceDirectory() string {
	return s.pathValidator.Root()
}

// GetMaxFileSize returns the configured maximum source size
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Service) readSource(path string) ([]byte, error) {
	if _, err := s.validator.ValidateSource(path); err != nil {
		return nil, fmt.Errorf("invalid source document: %w", err)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source document: %w", err)
	}

	return src, nil
}
