package stamp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentBuilder_Image(t *testing.T) {
	var b contentBuilder
	b.image("FsIm1", Rect{X: 61.2, Y: 673.2, W: 183.6, H: 39.6})

	assert.Equal(t, "q\n183.60 0 0 39.60 61.20 673.20 cm\n/FsIm1 Do\nQ\n", string(b.Bytes()))
}

func TestContentBuilder_Text(t *testing.T) {
	var b contentBuilder
	b.text("FsF1", TextFontSize, 61.2, 693.0, []byte("Jane Doe"))

	got := string(b.Bytes())
	assert.Contains(t, got, "/FsF1 14.00 Tf\n")
	assert.Contains(t, got, "0 0 0 rg\n")
	assert.Contains(t, got, "61.20 693.00 Td\n")
	assert.Contains(t, got, "<4a616e6520446f65> Tj\n")
	assert.True(t, strings.HasPrefix(got, "q\nBT\n"))
	assert.True(t, strings.HasSuffix(got, "ET\nQ\n"))
}

func TestContentBuilder_FilledCircle(t *testing.T) {
	var b contentBuilder
	b.filledCircle(100, 200, RadioRadius)

	got := string(b.Bytes())
	lines := strings.Split(strings.TrimSpace(got), "\n")

	require.Len(t, lines, 9)
	assert.Equal(t, "0 0 0 rg", lines[1])
	assert.Equal(t, "106.00 200.00 m", lines[2])
	for _, line := range lines[3:7] {
		assert.True(t, strings.HasSuffix(line, " c"), "expected curve segment, got %q", line)
	}
	assert.Equal(t, "f", lines[7])
	assert.Equal(t, "Q", lines[8])
}

func TestContentBuilder_Empty(t *testing.T) {
	var b contentBuilder
	assert.Equal(t, 0, b.Len())
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "ascii", input: "Jane Doe", want: []byte("Jane Doe")},
		{name: "empty", input: "", want: []byte{}},
		{name: "latin1 accent", input: "Zoë", want: []byte{'Z', 'o', 0xeb}},
		{name: "euro sign", input: "€5", want: []byte{0x80, '5'}},
		{name: "line breaks folded", input: "a\r\nb\nc", want: []byte("a b c")},
		{name: "cjk is rejected", input: "署名", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeWinAnsi(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
