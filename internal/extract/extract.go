package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrParse matches every *ParseError.
var ErrParse = errors.New("document parse failed")

// ParseError reports a document that could not be read. It is caused by the
// uploaded bytes, not by the service.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error reading %s: %v", strings.ToUpper(string(e.Format)), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse so callers need not know the concrete type.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// FormatFromFilename returns the format named by the text after the last '.',
// compared case-insensitively.
func FormatFromFilename(name string) (Format, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", false
	}
	switch Format(strings.ToLower(name[idx+1:])) {
	case FormatPDF:
		return FormatPDF, true
	case FormatDOCX:
		return FormatDOCX, true
	default:
		return "", false
	}
}

// Text extracts the visible text of a document, trimmed of surrounding
// whitespace. PDF pages and DOCX paragraphs are joined with newlines.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func Text(ctx context.Context, data []byte, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("unsupported format: %q", format)
	}
	if err != nil {
		return "", &ParseError{Format: format, Err: err}
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

const (
	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	compatibilityNS  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// docxParagraphs walks word/document.xml and returns the text of every w:p in
// document order, including paragraphs nested in tables and text boxes. A
// nested paragraph gets its own entry after the paragraph that holds it.
// mc:Fallback subtrees repeat their mc:Choice sibling and are skipped.
func docxParagraphs(raw string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	type open struct {
		slot int
		text strings.Builder
	}
	var (
		paragraphs []string
		stack      []*open
		skipDepth  int
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 || (t.Name.Space == compatibilityNS && t.Name.Local == "Fallback") {
				skipDepth++
				continue
			}
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, "")
				stack = append(stack, &open{slot: len(paragraphs) - 1})
			case "t":
				inText = true
			case "tab":
				if len(stack) > 0 {
					stack[len(stack)-1].text.WriteString("\t")
				}
			case "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].text.WriteString("\n")
				}
			}
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if n := len(stack); n > 0 {
					top := stack[n-1]
					paragraphs[top.slot] = top.text.String()
					stack = stack[:n-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && skipDepth == 0 && len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	return paragraphs, nil
}
