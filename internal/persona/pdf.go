package persona

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFExtractor extracts plain text from PDF documents via MuPDF.
type PDFExtractor struct{}

// ExtractText returns the concatenated text of every page in the
// document at path.
func (PDFExtractor) ExtractText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		_ = doc.Close()
	}()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i+1, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
