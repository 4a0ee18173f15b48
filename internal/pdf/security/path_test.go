package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{
			name:      "valid directory",
			dir:       tempDir,
			wantError: false,
		},
		{
			name:      "empty directory",
			dir:       "",
			wantError: true,
		},
		{
			name:      "non-existent directory",
			dir:       "/non/existent/path",
			wantError: false, // checked when documents are resolved
		},
		{
			name:      "relative directory",
			dir:       ".",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(validator.Root()) {
				t.Errorf("Expected absolute root, got %s", validator.Root())
			}
		})
	}
}

func TestPathValidator_ResolveURL(t *testing.T) {
	tempDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tempDir, "uploads"), 0o755); err != nil {
		t.Fatalf("Failed to create uploads dir: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	root := validator.Root()

	tests := []struct {
		name      string
		url       string
		want      string
		wantError bool
		outside   bool
	}{
		{
			name: "root level document",
			url:  "/sample.pdf",
			want: filepath.Join(root, "sample.pdf"),
		},
		{
			name: "nested document",
			url:  "/uploads/contract.pdf",
			want: filepath.Join(root, "uploads", "contract.pdf"),
		},
		{
			name: "relative url",
			url:  "sample.pdf",
			want: filepath.Join(root, "sample.pdf"),
		},
		{
			name: "query string dropped",
			url:  "/sample.pdf?v=2",
			want: filepath.Join(root, "sample.pdf"),
		},
		{
			name: "absolute http url uses path",
			url:  "http://localhost:5173/sample.pdf",
			want: filepath.Join(root, "sample.pdf"),
		},
		{
			name: "percent encoded name",
			url:  "/my%20file.pdf",
			want: filepath.Join(root, "my file.pdf"),
		},
		{
			name: "literal percent in name",
			url:  "/100%.pdf",
			want: filepath.Join(root, "100%.pdf"),
		},
		{
			name: "hash in name",
			url:  "/report#2.pdf",
			want: filepath.Join(root, "report#2.pdf"),
		},
		{
			name: "hash and literal percent with query",
			url:  "/uploads/50%#final.pdf?v=3",
			want: filepath.Join(root, "uploads", "50%#final.pdf"),
		},
		{
			name:      "literal percent traversal",
			url:       "/../100%.pdf",
			wantError: true,
			outside:   true,
		},
		{
			name:      "empty url",
			url:       "",
			wantError: true,
		},
		{
			name:      "parent traversal",
			url:       "/../etc/passwd",
			wantError: true,
			outside:   true,
		},
		{
			name:      "inner traversal",
			url:       "/uploads/../../secret.pdf",
			wantError: true,
			outside:   true,
		},
		{
			name:      "encoded traversal",
			url:       "/%2e%2e/secret.pdf",
			wantError: true,
			outside:   true,
		},
		{
			name:      "backslash traversal",
			url:       "/uploads\\..\\..\\secret.pdf",
			wantError: true,
			outside:   true,
		},
		{
			name:      "file scheme",
			url:       "file:///etc/passwd",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ResolveURL(tt.url)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Expected error but got path %s", got)
				}
				if tt.outside && !errors.Is(err, ErrOutsideRoot) {
					t.Errorf("Expected ErrOutsideRoot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveURL(%q) = %s, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	validFile := filepath.Join(tempDir, "valid.pdf")
	subFile := filepath.Join(subDir, "sub.pdf")
	if err := os.WriteFile(validFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(subFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create sub file: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
		{
			name:      "valid file in root",
			path:      validFile,
			wantError: false,
		},
		{
			name:      "valid file in subdirectory",
			path:      subFile,
			wantError: false,
		},
		{
			name:      "file outside directory",
			path:      "/etc/passwd",
			wantError: true,
		},
		{
			name:      "parent directory traversal",
			path:      filepath.Join(tempDir, "..", "outside.pdf"),
			wantError: true,
		},
		{
			name:      "sibling with common prefix",
			path:      tempDir + "-other/file.pdf",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()

	outsideFile := filepath.Join(outsideDir, "secret.pdf")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0o644); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	insideFile := filepath.Join(tempDir, "target.pdf")
	if err := os.WriteFile(insideFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create target file: %v", err)
	}

	escapeLink := filepath.Join(tempDir, "escape.pdf")
	innerLink := filepath.Join(tempDir, "inner.pdf")
	if err := os.Symlink(outsideFile, escapeLink); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(insideFile, innerLink); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if _, err := validator.ResolveURL("/escape.pdf"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Expected symlink escape to be rejected, got %v", err)
	}
	if _, err := validator.ResolveURL("/inner.pdf"); err != nil {
		t.Errorf("Expected symlink within root to be accepted, got %v", err)
	}
}
