package stamp

// Rel is a field box in page-relative units with a top-left origin
type Rel struct {
	XRel float64 `json:"xRel"`
	YRel float64 `json:"yRel"`
	WRel float64 `json:"wRel"`
	HRel float64 `json:"hRel"`
}

// Rect is a box in PDF user space (points, bottom-left origin)
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Center returns the midpoint of the box
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// RelToAbs maps a top-left anchored relative box onto absolute page coordinates.
// The vertical axis is flipped and shifted by the box height because PDF
// shapes are anchored at their bottom-left corner. Inputs are not clamped, so
// boxes may land partially or fully off the page.
func RelToAbs(rel Rel, pageWidth, pageHeight float64) Rect {
	return Rect{
		X: rel.XRel * pageWidth,
		Y: pageHeight - rel.YRel*pageHeight - rel.HRel*pageHeight,
		W: rel.WRel * pageWidth,
		H: rel.HRel * pageHeight,
	}
}
