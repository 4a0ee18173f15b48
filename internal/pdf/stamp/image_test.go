package stamp

import (
	"encoding/base64"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-field-stamper/internal/pdf/pdftest"
)

func TestDecodeImagePayload(t *testing.T) {
	raw := pdftest.PNG(2, 2, color.Black)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "data url", payload: "data:image/png;base64," + encoded},
		{name: "bare base64", payload: encoded},
		{name: "unpadded base64", payload: strings.TrimRight(encoded, "=")},
		{name: "surrounding whitespace", payload: "  " + encoded + "\n"},
		{name: "empty", payload: "", wantErr: true},
		{name: "blank", payload: "   ", wantErr: true},
		{name: "data url without comma", payload: "data:image/png;base64", wantErr: true},
		{name: "data url not base64", payload: "data:image/svg+xml,<svg/>", wantErr: true},
		{name: "garbage", payload: "not*base64!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeImagePayload(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}
