// Package stamp renders field placements onto the first page of a PDF.
//
// Placements arrive in page-relative, top-left anchored units from the editor
// UI. Each one is mapped onto absolute PDF user space with RelToAbs and drawn
// into a content stream appended to the page. Placements are painted in the
// order given, so later fields cover earlier ones.
//
// Rendering per field type:
//
//	signature, image  the embedded raster fills the field box exactly
//	text, date        one line of Helvetica 14pt, black, baseline at mid-box
//	radio             a filled 6pt circle at the box center, drawn whether or
//	                  not the field is checked (the checked flag is ignored)
//
// Unknown field types and image fields without a payload are skipped without
// error. Any other failure aborts the whole document.
package stamp

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Stamper bakes field placements into PDF documents. It holds no per-document
// state and is safe for concurrent use.
type Stamper struct {
	debug bool
}

// NewStamper creates a new stamper
func NewStamper(debug bool) *Stamper {
	return &Stamper{debug: debug}
}

// Stamp renders fields onto the first page of src and returns the serialized result
func (s *Stamper) Stamp(ctx context.Context, src []byte, fields []Field) ([]byte, error) {
	pdfCtx, err := readContext(src)
	if err != nil {
		return nil, err
	}

	page, err := firstPage(pdfCtx)
	if err != nil {
		return nil, err
	}

	canvas := newPageCanvas(pdfCtx.XRefTable, page)
	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return nil, opError("render", err)
		}
		if s.debug && skipped(field) {
			log.Printf("Skipping field %d (type %q): nothing to render", i, field.Type)
		}
		if err := canvas.draw(field); err != nil {
			return nil, fieldError("render", i, err)
		}
	}

	if err := canvas.flush(); err != nil {
		return nil, opError("attach", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, opError("write", err)
	}

	return buf.Bytes(), nil
}

// PageSize returns the MediaBox width and height of the first page in points
func (s *Stamper) PageSize(src []byte) (float64, float64, error) {
	pdfCtx, err := readContext(src)
	if err != nil {
		return 0, 0, err
	}

	page, err := firstPage(pdfCtx)
	if err != nil {
		return 0, 0, err
	}

	return page.width, page.height, nil
}

// skipped reports whether a placement produces no marks
func skipped(field Field) bool {
	if !field.Type.IsKnown() {
		return true
	}
	return (field.Type == FieldTypeSignature || field.Type == FieldTypeImage) && !field.HasImage()
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func readContext(src []byte) (*model.Context, error) {
	if len(src) == 0 {
		return nil, opError("read", ErrEmpty)
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(src), newConfiguration())
	if err != nil {
		return nil, opError("read", fmt.Errorf("failed to read PDF context: %w", err))
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, opError("validate", err)
	}

	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, opError("read", fmt.Errorf("failed to ensure page count: %w", err))
	}

	return pdfCtx, nil
}

// pageTarget is the page dictionary being stamped plus its effective geometry
type pageTarget struct {
	dict      types.Dict
	inherited types.Dict
	width     float64
	height    float64
}

func firstPage(pdfCtx *model.Context) (*pageTarget, error) {
	if pdfCtx.PageCount < 1 {
		return nil, opError("page", ErrNoPages)
	}

	pageDict, _, inhPA, err := pdfCtx.PageDict(1, true)
	if err != nil {
		return nil, opError("page", err)
	}
	if pageDict == nil {
		return nil, opError("page", ErrNoPages)
	}
	if inhPA == nil || inhPA.MediaBox == nil {
		return nil, opError("page", fmt.Errorf("page 1 has no MediaBox"))
	}

	return &pageTarget{
		dict:      pageDict,
		inherited: inhPA.Resources,
		width:     inhPA.MediaBox.Width(),
		height:    inhPA.MediaBox.Height(),
	}, nil
}

// pageCanvas collects drawing operations and resources for a single page
type pageCanvas struct {
	xRefTable *model.XRefTable
	page      *pageTarget
	content   contentBuilder

	resources types.Dict
	fonts     types.Dict
	xobjects  types.Dict
	fontName  string
}

func newPageCanvas(xRefTable *model.XRefTable, page *pageTarget) *pageCanvas {
	return &pageCanvas{xRefTable: xRefTable, page: page}
}

func (c *pageCanvas) draw(field Field) error {
	rect := RelToAbs(field.Rel(), c.page.width, c.page.height)

	switch field.Type {
	case FieldTypeSignature, FieldTypeImage:
		if !field.HasImage() {
			return nil
		}
		raw, err := decodeImagePayload(*field.ImageURL)
		if err != nil {
			return err
		}
		name, err := c.addImage(raw)
		if err != nil {
			return err
		}
		c.content.image(name, rect)

	case FieldTypeText, FieldTypeDate:
		encoded, err := encodeWinAnsi(field.Text())
		if err != nil {
			return err
		}
		name, err := c.helvetica()
		if err != nil {
			return err
		}
		c.content.text(name, TextFontSize, rect.X, rect.Y+rect.H/2, encoded)

	case FieldTypeRadio:
		// checked is ignored, every radio gets a mark
		cx, cy := rect.Center()
		c.content.filledCircle(cx, cy, RadioRadius)
	}

	return nil
}

// flush attaches the accumulated content to the page. The existing content is
// bracketed by q/Q so the new operators start from the default graphics state.
func (c *pageCanvas) flush() error {
	if c.content.Len() == 0 {
		return nil
	}

	existing, err := c.existingContents()
	if err != nil {
		return err
	}

	var contents types.Array
	body := c.content.Bytes()

	if len(existing) > 0 {
		openRef, err := c.newContentStream([]byte("q\n"))
		if err != nil {
			return err
		}
		contents = append(contents, *openRef)
		contents = append(contents, existing...)
		body = append([]byte("\nQ\n"), body...)
	}

	bodyRef, err := c.newContentStream(body)
	if err != nil {
		return err
	}
	contents = append(contents, *bodyRef)

	c.page.dict["Contents"] = contents
	return nil
}

func (c *pageCanvas) existingContents() (types.Array, error) {
	obj, found := c.page.dict.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	switch o := obj.(type) {
	case types.IndirectRef:
		target, err := c.xRefTable.Dereference(o)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page contents: %w", err)
		}
		if arr, ok := target.(types.Array); ok {
			return append(types.Array{}, arr...), nil
		}
		return types.Array{o}, nil
	case types.Array:
		return append(types.Array{}, o...), nil
	default:
		return nil, fmt.Errorf("unexpected page contents type %T", obj)
	}
}

func (c *pageCanvas) newContentStream(buf []byte) (*types.IndirectRef, error) {
	sd, err := c.xRefTable.NewStreamDictForBuf(buf)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return c.xRefTable.IndRefForNewObject(*sd)
}

// helvetica returns the resource name of the standard font, adding it on first use
func (c *pageCanvas) helvetica() (string, error) {
	if c.fontName != "" {
		return c.fontName, nil
	}

	if c.fonts == nil {
		fonts, err := c.subResources("Font")
		if err != nil {
			return "", err
		}
		c.fonts = fonts
	}

	fontDict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := c.xRefTable.IndRefForNewObject(fontDict)
	if err != nil {
		return "", fmt.Errorf("failed to add font: %w", err)
	}

	name := uniqueName(c.fonts, "FsF")
	c.fonts[name] = *ref
	c.fontName = name
	return name, nil
}

func (c *pageCanvas) addImage(raw []byte) (string, error) {
	if c.xobjects == nil {
		xobjects, err := c.subResources("XObject")
		if err != nil {
			return "", err
		}
		c.xobjects = xobjects
	}

	ref, err := embedImage(c.xRefTable, raw)
	if err != nil {
		return "", err
	}

	name := uniqueName(c.xobjects, "FsIm")
	c.xobjects[name] = *ref
	return name, nil
}

// subResources replaces the named resource category with a direct copy owned
// by this page, so additions never leak into dictionaries shared with other pages.
func (c *pageCanvas) subResources(key string) (types.Dict, error) {
	res, err := c.pageResources()
	if err != nil {
		return nil, err
	}

	sub := types.NewDict()
	if obj, found := res.Find(key); found && obj != nil {
		d, err := c.xRefTable.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s resources: %w", key, err)
		}
		for k, v := range d {
			sub[k] = v
		}
	}

	res[key] = sub
	return sub, nil
}

func (c *pageCanvas) pageResources() (types.Dict, error) {
	if c.resources != nil {
		return c.resources, nil
	}

	src := c.page.inherited
	if obj, found := c.page.dict.Find("Resources"); found && obj != nil {
		d, err := c.xRefTable.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page resources: %w", err)
		}
		if d != nil {
			src = d
		}
	}

	// a direct copy on the page, the original may be referenced by other pages
	d := types.NewDict()
	for k, v := range src {
		d[k] = v
	}
	c.page.dict["Resources"] = d
	c.resources = d
	return d, nil
}

func uniqueName(d types.Dict, prefix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if _, taken := d[name]; !taken {
			return name
		}
	}
}
