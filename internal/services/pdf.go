package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF      = errors.New("file is not a PDF")
	ErrUnreadable  = errors.New("PDF could not be read")
	ErrNoPDFText   = errors.New("no extractable text found in pdf")
	pdfMagicPrefix = []byte("%PDF-")
)

// PDFService inspects uploaded PDFs. Generation never depends on it: the
// model receives the raw bytes. Text is only used as feedback context.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// HasPDFMagic reports whether data starts with the PDF header.
func HasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagicPrefix)
}

// Inspect verifies that data is a readable PDF and returns its page count.
func (s *PDFService) Inspect(data []byte) (pages int, err error) {
	if !HasPDFMagic(data) {
		return 0, ErrNotPDF
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	n := reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: no pages", ErrUnreadable)
	}
	return n, nil
}

// ExtractText returns the normalised plain text of data, cut to at most
// maxChars runes when maxChars > 0.
func (s *PDFService) ExtractText(data []byte, maxChars int) (text string, err error) {
	if !HasPDFMagic(data) {
		return "", ErrNotPDF
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")

		if maxChars > 0 && b.Len() > maxChars*utf8.UTFMax {
			break
		}
	}

	text = normalizeExtractedText(b.String())
	if text == "" {
		return "", ErrNoPDFText
	}
	return truncateRunes(text, maxChars), nil
}

func (s *PDFService) ExtractTextFromPath(path string, maxChars int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return s.ExtractText(data, maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
