package stamp

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const (
	// TextFontSize is the size, in points, used for text and date fields
	TextFontSize = 14.0

	// RadioRadius is the radius, in points, of the mark drawn for radio fields
	RadioRadius = 6.0

	// kappa places Bezier control points for a quarter-circle arc
	kappa = 0.5522847498
)

// contentBuilder accumulates page content stream operators
type contentBuilder struct {
	buf bytes.Buffer
}

func (b *contentBuilder) Len() int {
	return b.buf.Len()
}

func (b *contentBuilder) Bytes() []byte {
	return b.buf.Bytes()
}

// image paints the XObject resource name scaled to fill rect
func (b *contentBuilder) image(name string, r Rect) {
	b.buf.WriteString("q\n")
	fmt.Fprintf(&b.buf, "%.2f 0 0 %.2f %.2f %.2f cm\n", r.W, r.H, r.X, r.Y)
	fmt.Fprintf(&b.buf, "/%s Do\n", name)
	b.buf.WriteString("Q\n")
}

// text shows a single line of already encoded text with its baseline at (x, y)
func (b *contentBuilder) text(fontName string, size, x, y float64, encoded []byte) {
	b.buf.WriteString("q\nBT\n")
	fmt.Fprintf(&b.buf, "/%s %.2f Tf\n", fontName, size)
	b.buf.WriteString("0 0 0 rg\n")
	fmt.Fprintf(&b.buf, "%.2f %.2f Td\n", x, y)
	fmt.Fprintf(&b.buf, "<%s> Tj\n", hex.EncodeToString(encoded))
	b.buf.WriteString("ET\nQ\n")
}

// filledCircle fills a black circle approximated by four Bezier arcs
func (b *contentBuilder) filledCircle(cx, cy, r float64) {
	k := kappa * r
	b.buf.WriteString("q\n0 0 0 rg\n")
	fmt.Fprintf(&b.buf, "%.2f %.2f m\n", cx+r, cy)
	fmt.Fprintf(&b.buf, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	fmt.Fprintf(&b.buf, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	fmt.Fprintf(&b.buf, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	fmt.Fprintf(&b.buf, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	b.buf.WriteString("f\nQ\n")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// encodeWinAnsi converts s to the single-byte encoding used by the standard
// Helvetica font resource. Line breaks are folded into spaces.
func encodeWinAnsi(s string) ([]byte, error) {
	s = lineBreaks.Replace(s)
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("text %q cannot be encoded in WinAnsi: %w", s, err)
	}
	return []byte(out), nil
}
