// Package extract turns uploaded PDF byte streams into a single text blob
// with word and character statistics.
package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Document is the text extracted from one upload set.
// It is immutable once computed; re-extracting the same bytes yields the
// same Document.
type Document struct {
	Text  string `json:"text"`
	Words int    `json:"words"`
	Chars int    `json:"chars"`
}

// NewDocument builds a Document from already-extracted text.
// Character count is in runes, not bytes.
func NewDocument(text string) Document {
	text = strings.TrimSpace(text)
	return Document{
		Text:  text,
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
	}
}

// Extract concatenates the per-page text of each file, in upload order then
// page order, with no separator. Files or pages that cannot be parsed
// contribute empty text; extraction never fails.
func Extract(files [][]byte) Document {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(fileText(f))
	}
	return NewDocument(b.String())
}

// Digest returns a stable key for an ordered upload set, used to cache
// extraction results. Lengths are mixed in so stream boundaries matter.
func Digest(files [][]byte) string {
	h := sha256.New()
	for _, f := range files {
		_ = binary.Write(h, binary.BigEndian, uint64(len(f)))
		h.Write(f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fileText extracts plain text from a single PDF. The parser panics on some
// malformed files, so corrupt input is contained here and yields "".
func fileText(content []byte) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		b.WriteString(pageText)
	}
	return b.String()
}
