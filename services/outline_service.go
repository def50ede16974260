package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OutlineExtractor turns an uploaded course-outline PDF into the plain text
// stored on the course and fed to the course profiler.
type OutlineExtractor struct{}

// NewOutlineExtractor creates a new outline extractor
func NewOutlineExtractor() *OutlineExtractor {
	return &OutlineExtractor{}
}

// trimTrailingGarbage truncates content after the last %%EOF marker. PDFs
// saved from the web often carry HTML or tracking junk appended to the file.
func trimTrailingGarbage(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	end := lastEOF + len(eofMarker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}

	if len(content)-end > 10 {
		return content[:end]
	}
	return content
}

// ExtractText extracts the outline text from PDF bytes
func (e *OutlineExtractor) ExtractText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	content = trimTrailingGarbage(content)

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Row extraction preserves structure; fall back to plain text
			text, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				continue
			}
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n")
			continue
		}

		for _, row := range rows {
			var rowText strings.Builder
			for _, word := range row.Content {
				rowText.WriteString(word.S)
			}
			line := strings.TrimSpace(rowText.String())
			if line != "" {
				textBuilder.WriteString(line)
				textBuilder.WriteString("\n")
			}
		}
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())

	if len(extracted) < 50 {
		return "", fmt.Errorf("insufficient text extracted from PDF (only %d characters) - the outline may be scanned/image-based", len(extracted))
	}

	return extracted, nil
}
