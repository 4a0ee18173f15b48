package stamp

// FieldType represents the kind of form field placed on a page
type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeText      FieldType = "text"
	FieldTypeDate      FieldType = "date"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeImage     FieldType = "image"
)

// IsKnown reports whether t is one of the field types the stamper renders
func (t FieldType) IsKnown() bool {
	switch t {
	case FieldTypeSignature, FieldTypeText, FieldTypeDate, FieldTypeRadio, FieldTypeImage:
		return true
	default:
		return false
	}
}

// Field is a single field placement as submitted by the editor UI.
//
// Positions are fractions of the page size with the origin at the top-left
// corner of the page. Value and ImageURL are pointers so that JSON null and
// absent keys both read as "not provided".
type Field struct {
	ID        any       `json:"id,omitempty"`
	Type      FieldType `json:"type"`
	FieldName *string   `json:"fieldName,omitempty"`
	Value     *string   `json:"value,omitempty"`
	Checked   bool      `json:"checked"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	Page      int       `json:"page,omitempty"` // ignored, only page 1 is stamped

	XRel float64 `json:"xRel"`
	YRel float64 `json:"yRel"`
	WRel float64 `json:"wRel"`
	HRel float64 `json:"hRel"`
}

// Rel returns the normalized bounding box of the field
func (f Field) Rel() Rel {
	return Rel{XRel: f.XRel, YRel: f.YRel, WRel: f.WRel, HRel: f.HRel}
}

// Text returns the field value or the empty string
func (f Field) Text() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

// HasImage reports whether the field carries a non-empty image payload
func (f Field) HasImage() bool {
	return f.ImageURL != nil && *f.ImageURL != ""
}
