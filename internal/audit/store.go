package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// OutputPrefix is prepended to every generated document name
	OutputPrefix = "signed_"

	// DefaultFilePerm is used for generated documents and records
	DefaultFilePerm = 0o644
)

// Common error variables
var (
	ErrRecordNotFound = errors.New("audit record not found")
	ErrInvalidID      = errors.New("invalid audit id")
)

// Record ties a generated document to the source it was derived from
type Record struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	OriginalHash   string    `json:"originalHash"`
	FinalHash      string    `json:"finalHash"`
	OutputLocation string    `json:"outputLocation"`
	FieldCount     int       `json:"fieldCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Verification is the result of re-hashing a stored document
type Verification struct {
	Record      *Record `json:"record"`
	CurrentHash string  `json:"currentHash"`
	Verified    bool    `json:"verified"`
}

// Store keeps generated documents and their audit records side by side in a
// single directory: signed_<id>.pdf and signed_<id>.json
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// NewID returns a fresh identifier for a generated document
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that id is a canonical UUID string
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Dir returns the directory holding documents and records
func (s *Store) Dir() string {
	return s.dir
}

// DocumentName returns the file name of the document generated for id
func DocumentName(id string) string {
	return OutputPrefix + id + ".pdf"
}

func recordName(id string) string {
	return OutputPrefix + id + ".json"
}

// WriteDocument atomically stores a generated document and returns its path
func (s *Store) WriteDocument(id string, data []byte) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, DocumentName(id))
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// ReadDocument returns the stored document for id
func (s *Store) ReadDocument(id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, DocumentName(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// Save persists rec next to its document
func (s *Store) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := ValidateID(rec.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(s.dir, recordName(rec.ID)), data); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Load reads the record stored for id
func (s *Store) Load(id string) (*Record, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, recordName(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode audit record: %w", err)
	}
	return &rec, nil
}

// Verify re-hashes the stored document for id and compares it against the
// final hash captured when it was generated
func (s *Store) Verify(id string) (*Verification, error) {
	rec, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	data, err := s.ReadDocument(id)
	if errors.Is(err, ErrRecordNotFound) {
		// The record outlived its document; report it as not verified.
		return &Verification{Record: rec}, nil
	}
	if err != nil {
		return nil, err
	}

	current := HashHex(data)
	return &Verification{
		Record:      rec,
		CurrentHash: current,
		Verified:    current == rec.FinalHash,
	}, nil
}

// Remove deletes the document and record for id, ignoring missing files
func (s *Store) Remove(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	var errs []error
	for _, name := range []string{DocumentName(id), recordName(id)} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, DefaultFilePerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
