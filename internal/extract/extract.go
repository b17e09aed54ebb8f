// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/veritext/veritext/internal/apperr"
)

// Extractor converts raw file bytes of a declared type into text. Binary
// formats (PDF, legacy Word, OOXML) are handled by external collaborators
// implementing this interface; the built-in extractor covers plain text.
type Extractor interface {
	// Extract returns the text content of data. It fails with
	// apperr.ErrUnsupportedFileType for unknown declared types and
	// apperr.ErrExtractionFailure when the content cannot be decoded.
	Extract(data []byte, declaredType string) (string, error)
	// Supported reports whether the declared type can be extracted.
	Supported(declaredType string) bool
}

// PlainText extracts UTF-8 text files (txt, md, text).
type PlainText struct{}

// NewPlainText returns the built-in plain-text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Supported reports whether the declared type is a plain-text format.
func (p *PlainText) Supported(declaredType string) bool {
	switch normalizeType(declaredType) {
	case "txt", "md", "text", "markdown":
		return true
	}
	return false
}

// Extract decodes data as UTF-8 text.
func (p *PlainText) Extract(data []byte, declaredType string) (string, error) {
	if !p.Supported(declaredType) {
		return "", fmt.Errorf("%w: %s", apperr.ErrUnsupportedFileType, declaredType)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", apperr.ErrExtractionFailure)
	}
	return string(data), nil
}

// TypeFromFileName returns the lowercased extension of fileName without the
// leading dot, or "" when there is none.
func TypeFromFileName(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
}
