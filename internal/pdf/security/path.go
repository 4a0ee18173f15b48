package security

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside the source root
var ErrOutsideRoot = errors.New("path is outside the source root")

// PathValidator resolves client supplied document locations against a
// server-local source root
type PathValidator struct {
	root string
}

// NewPathValidator creates a new path validator for the given root directory
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("source root cannot be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}

	return &PathValidator{root: filepath.Clean(absRoot)}, nil
}

// Root returns the absolute source root
func (v *PathValidator) Root() string {
	return v.root
}

// ResolveURL maps a document URL such as "/sample.pdf" or
// "/uploads/contract.pdf?v=2" onto a file below the source root. Absolute
// http(s) URLs contribute only their path. The result is rejected with
// ErrOutsideRoot when it would escape the root.
func (v *PathValidator) ResolveURL(pdfURL string) (string, error) {
	pdfURL = strings.ReplaceAll(strings.TrimSpace(pdfURL), "\x00", "")
	if pdfURL == "" {
		return "", fmt.Errorf("pdf url cannot be empty")
	}

	rel, err := urlPath(pdfURL)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return "", fmt.Errorf("pdf url has no path: %q", pdfURL)
	}

	// Reject traversal before cleaning so "/a/../../x" cannot slip through
	for _, segment := range strings.Split(strings.ReplaceAll(rel, "\\", "/"), "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, pdfURL)
		}
	}

	resolved := filepath.Join(v.root, filepath.FromSlash(path.Clean("/"+rel)))
	if err := v.ValidatePath(resolved); err != nil {
		return "", err
	}

	return resolved, nil
}

// urlPath extracts the file path from pdfURL. Absolute http(s) URLs are parsed
// and contribute their decoded path. Anything else is taken as a path: the
// query is dropped, percent escapes are decoded when they are well formed and
// kept literally otherwise, and '#' is part of the file name.
func urlPath(pdfURL string) (string, error) {
	if strings.Contains(pdfURL, "://") || strings.HasPrefix(strings.ToLower(pdfURL), "file:") {
		u, err := url.Parse(pdfURL)
		if err != nil {
			return "", fmt.Errorf("invalid pdf url %q: %w", pdfURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported pdf url scheme: %s", u.Scheme)
		}
		return u.Path, nil
	}

	p, _, _ := strings.Cut(pdfURL, "?")
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded, nil
	}
	return p, nil
}

// ValidatePath checks if a path is within the source root, following symlinks
func (v *PathValidator) ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	within, err := v.IsPathWithinRoot(p)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}

	return nil
}

// IsPathWithinRoot reports whether p, and the file it points to when it is a
// symlink, both lie within the source root
func (v *PathValidator) IsPathWithinRoot(p string) (bool, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}

	pathOk := isWithin(cleanPath, v.root) || isWithin(cleanPath, realRoot)
	realPathOk := isWithin(realPath, v.root) || isWithin(realPath, realRoot)

	return pathOk && realPathOk, nil
}

func isWithin(p, dir string) bool {
	if p == dir {
		return true
	}

	dirWithSep := dir
	if !strings.HasSuffix(dirWithSep, string(filepath.Separator)) {
		dirWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(p, dirWithSep)
}
