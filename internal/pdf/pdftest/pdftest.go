// Package pdftest builds small in-memory PDF documents and image payloads for tests.
package pdftest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Letter page size in points
const (
	LetterWidth  = 612.0
	LetterHeight = 792.0
)

// Options controls the shape of a generated document
type Options struct {
	Width  float64
	Height float64
	Pages  int
	// Content is the uncompressed content stream of every page. Empty means
	// the pages carry no Contents entry at all.
	Content string
	// InheritMediaBox puts the MediaBox on the page tree root instead of the pages.
	InheritMediaBox bool
}

// Letter returns a single US Letter page with a line of text on it
func Letter() []byte {
	return Build(Options{
		Width:   LetterWidth,
		Height:  LetterHeight,
		Pages:   1,
		Content: "BT /F1 12 Tf 72 720 Td (Source document) Tj ET",
	})
}

// Build assembles a classic xref-table PDF from opts
func Build(opts Options) []byte {
	if opts.Pages < 1 {
		opts.Pages = 1
	}

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	mediaBox := fmt.Sprintf("[0 0 %s %s]", num(opts.Width), num(opts.Height))

	catalog := add("") // filled in once the page tree number is known
	pagesNr := add("")
	fontNr := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	kids := make([]string, 0, opts.Pages)
	for i := 0; i < opts.Pages; i++ {
		page := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Resources << /Font << /F1 %d 0 R >> >>", pagesNr, fontNr)
		if !opts.InheritMediaBox {
			page += " /MediaBox " + mediaBox
		}
		if opts.Content != "" {
			contentNr := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(opts.Content), opts.Content))
			page += fmt.Sprintf(" /Contents %d 0 R", contentNr)
		}
		page += " >>"
		kids = append(kids, fmt.Sprintf("%d 0 R", add(page)))
	}

	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNr)
	pages := fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d", strings.Join(kids, " "), opts.Pages)
	if opts.InheritMediaBox {
		pages += " /MediaBox " + mediaBox
	}
	objects[pagesNr-1] = pages + " >>"

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)

	return buf.Bytes()
}

// PNG returns an encoded w x h PNG filled with c
func PNG(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(fmt.Sprintf("pdftest: encode png: %v", err))
	}
	return buf.Bytes()
}

// DataURL wraps raw PNG bytes the way a browser FileReader does
func DataURL(raw []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}

// WriteFile stores data under dir and returns the full path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func num(v float64) string {
	return fmt.Sprintf("%g", v)
}

// PageContent returns the decoded content streams of the first page of data
func PageContent(t testing.TB, data []byte) string {
	t.Helper()

	ctx := readContext(t, data)
	r, err := pdfcpu.ExtractPageContent(ctx, 1)
	if err != nil {
		t.Fatalf("failed to extract page content: %v", err)
	}
	if r == nil {
		return ""
	}

	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read page content: %v", err)
	}
	return string(content)
}

// ResourceNames lists the entries of a resource category (Font, XObject, ...)
// of the first page of data, sorted
func ResourceNames(t testing.TB, data []byte, category string) []string {
	t.Helper()

	ctx := readContext(t, data)
	pageDict, _, inhPA, err := ctx.PageDict(1, true)
	if err != nil {
		t.Fatalf("failed to get page dict: %v", err)
	}

	resObj, found := pageDict.Find("Resources")
	if !found {
		if inhPA == nil || inhPA.Resources == nil {
			return nil
		}
		resObj = inhPA.Resources
	}
	res, err := ctx.DereferenceDict(resObj)
	if err != nil {
		t.Fatalf("failed to resolve resources: %v", err)
	}

	sub, err := ctx.DereferenceDict(res[category])
	if err != nil {
		t.Fatalf("failed to resolve %s resources: %v", category, err)
	}

	names := make([]string, 0, len(sub))
	for name := range sub {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PageCount returns the number of pages in data
func PageCount(t testing.TB, data []byte) int {
	t.Helper()
	return readContext(t, data).PageCount
}

func readContext(t testing.TB, data []byte) *model.Context {
	t.Helper()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	return ctx
}
