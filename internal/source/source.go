// Package source loads and saves the documents text is extracted from.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrReadOnly is returned when saving a document that was imported from a
// format clipnote cannot write back.
var ErrReadOnly = errors.New("document is read-only")

// Document is an opened source file.
type Document struct {
	Path     string
	Label    string
	Text     string
	ReadOnly bool
}

var extraneousWhitespace = regexp.MustCompile(`[ \t\f\v]+`)

// Load opens path. PDFs are converted to plain text with one paragraph per
// page and marked read-only. A missing text file opens as an empty document.
func Load(path string) (Document, error) {
	doc := Document{Path: path, Label: Label(path)}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := pdfText(path)
		if err != nil {
			return Document{}, err
		}
		doc.Text = text
		doc.ReadOnly = true
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return Document{}, err
	}
	doc.Text = string(data)
	return doc, nil
}

// Save writes text back to the document's path.
func Save(doc Document, text string) error {
	if doc.ReadOnly {
		return fmt.Errorf("save %s: %w", doc.Path, ErrReadOnly)
	}
	if doc.Path == "" {
		return errors.New("save: document has no path")
	}
	if err := os.MkdirAll(filepath.Dir(doc.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(doc.Path, []byte(text), 0o644)
}

// Label is the name entries use to link back to the source: the base name
// without its extension.
func Label(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf text (page %d): %w", i, err)
		}
		if text := normalizePage(content); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return plainText(reader)
	}
	return strings.Join(pages, "\n\n"), nil
}

func plainText(reader *pdf.Reader) (string, error) {
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return normalizePage(builder.String()), nil
}

func normalizePage(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(extraneousWhitespace.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
