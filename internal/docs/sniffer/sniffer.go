package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// DocType is the detected kind of an uploaded portal document.
type DocType string

const (
	TypePDF   DocType = "pdf"
	TypeZip   DocType = "zip" // also docx/xlsx/pptx containers
	TypeJPEG  DocType = "jpeg"
	TypePNG   DocType = "png"
	TypeGIF   DocType = "gif"
	TypeWEBP  DocType = "webp"
	TypeSVG   DocType = "svg"
	TypeText  DocType = "text"
	TypeOther DocType = "other"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

// DetectHead classifies the leading bytes of an upload. Zip containers stay
// generic: the declared mime decides between raw zip and OOXML flavors.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isPDF(head) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}
	if isZip(head) {
		return Result{Type: TypeZip, MIME: "application/zip"}, nil
	}
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isGIF(head) {
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	}
	if isWEBP(head) {
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	if isSVG(head) {
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}
	if utf8.Valid(head) && !bytes.ContainsRune(head, 0) {
		return Result{Type: TypeText, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

// Compatible reports whether the declared mime agrees with the detection.
// OOXML formats declare their own vendor mime over a zip container, and CSV
// is plain text on the wire.
func Compatible(declared string, result Result) bool {
	if declared == "" || declared == result.MIME {
		return true
	}
	switch result.Type {
	case TypeZip:
		return strings.HasPrefix(declared, "application/vnd.") || declared == "application/msword"
	case TypeText:
		return strings.HasPrefix(declared, "text/")
	}
	return false
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isZip(head []byte) bool {
	return len(head) >= 4 && head[0] == 'P' && head[1] == 'K' &&
		(head[2] == 0x03 || head[2] == 0x05 || head[2] == 0x07)
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") || strings.HasPrefix(trimmed, "<?xml")
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
