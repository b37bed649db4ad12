package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want DocType
		mime string
	}{
		{"pdf", []byte("%PDF-1.7 ..."), TypePDF, "application/pdf"},
		{"zip", []byte{'P', 'K', 0x03, 0x04, 0, 0}, TypeZip, "application/zip"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}, TypePNG, "image/png"},
		{"gif", []byte("GIF89a...."), TypeGIF, "image/gif"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg">`), TypeSVG, "image/svg+xml"},
		{"csv", []byte("name,region,capaian\nA,Jatim,96\n"), TypeText, "text/plain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DetectHead(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Type)
			assert.Equal(t, tc.mime, result.MIME)
		})
	}
}

func TestDetectHeadUnknown(t *testing.T) {
	_, err := DetectHead([]byte{0x00, 0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectHead(nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCompatible(t *testing.T) {
	zip := Result{Type: TypeZip, MIME: "application/zip"}
	assert.True(t, Compatible("", zip))
	assert.True(t, Compatible("application/zip", zip))
	assert.True(t, Compatible("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", zip))
	assert.False(t, Compatible("image/png", zip))

	text := Result{Type: TypeText, MIME: "text/plain"}
	assert.True(t, Compatible("text/csv", text))
	assert.False(t, Compatible("application/pdf", text))

	pdf := Result{Type: TypePDF, MIME: "application/pdf"}
	assert.False(t, Compatible("image/jpeg", pdf))
}
