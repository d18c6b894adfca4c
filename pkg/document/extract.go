// Package document turns an uploaded resume into plain text.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrEmpty       = errors.New("no text could be extracted from the document")
)

var pdfMagic = []byte("%PDF-")

// Extract returns the text of a PDF or plain-text document. The result is
// trimmed; an empty result is ErrEmpty.
func Extract(fileName string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		text, err = extractPDF(data)
	case isPlainText(fileName, data):
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, fileName)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func isPlainText(fileName string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md", ".markdown", "":
		return utf8.Valid(data)
	}
	return false
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}
