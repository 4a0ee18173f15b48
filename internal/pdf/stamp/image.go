package stamp

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var errEmptyPayload = errors.New("image payload is empty")

// decodeImagePayload returns the raw image bytes carried by a field. Both
// data URLs ("data:image/png;base64,...") and bare base64 strings are accepted.
func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errEmptyPayload
	}

	if strings.HasPrefix(payload, "data:") {
		meta, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL")
		}
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("data URL is not base64 encoded: %s", meta)
		}
		payload = data
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the trailing padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 image payload: %w", err)
		}
	}
	if len(raw) == 0 {
		return nil, errEmptyPayload
	}

	return raw, nil
}

// embedImage adds the image as an XObject to the document and returns its reference
func embedImage(xRefTable *model.XRefTable, raw []byte) (*types.IndirectRef, error) {
	ref, _, _, err := model.CreateImageResource(xRefTable, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}
	return ref, nil
}
