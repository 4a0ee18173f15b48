package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFStampFieldsDescription = `Bake signatures, images, text, dates and radio marks into the first page of a PDF.

**When to use:** A document has been laid out in the field editor and the placements must become part of the page content.

**Why it's useful:** Produces a new signed_<id>.pdf in the output directory and returns SHA-256 hashes of the source and the result for the audit trail. The source document is never modified.

**Field placement:** Each field is positioned with page-relative fractions measured from the top-left corner of the page: xRel, yRel, wRel, hRel in [0, 1].

**Rendering:**
• signature, image: a PNG data URL in imageUrl, stretched to fill the field box
• text, date: value drawn in Helvetica 14pt black, baseline at the middle of the box
• radio: a filled dot at the box center (the checked flag does not change the output)
• Other types, and image fields without imageUrl, are skipped

**Examples:**
• Sign a contract: pdfUrl "/contract.pdf", fields [{"type":"signature","imageUrl":"data:image/png;base64,...","xRel":0.1,"yRel":0.8,"wRel":0.3,"hRel":0.08}]
• Fill a name and date: [{"type":"text","value":"Jane Doe",...},{"type":"date","value":"2024-05-01",...}]

**Best practices:** Call pdf_document_info first to record the original hash, keep the returned id to verify the output later.`

	PDFVerifyOutputDescription = `Check that a generated document still matches the hash recorded when it was produced.

**When to use:** Before relying on a previously generated signed_<id>.pdf, or when auditing stored outputs.

**Why it's useful:** Re-hashes the stored document and compares it with the audit record, returning the record (source, hashes, field count, creation time) and a verified flag.

**Examples:**
• Audit a signed contract: id "6f1c2b9e-8d4a-4f5e-9b7c-2a3d4e5f6a7b"

**Best practices:** A missing or modified document reports verified=false rather than an error; an unknown id is an error.`

	PDFDocumentInfoDescription = `Describe a source document before stamping it.

**When to use:** Sizing the editor canvas, or pinning the hash of a source document before fields are applied.

**Why it's useful:** Returns the page count, the first page size in points and the SHA-256 hash of the file. Only the first page is ever stamped.

**Examples:**
• Inspect a template: pdfUrl "/uploads/nda.pdf"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_stamp_fields":  PDFStampFieldsDescription,
	"pdf_verify_output": PDFVerifyOutputDescription,
	"pdf_document_info": PDFDocumentInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all described tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
