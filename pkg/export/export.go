package export

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatTXT      Format = "txt"
	FormatMarkdown Format = "md"
	FormatDOCX     Format = "docx"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrEmptyDocument = errors.New("document is empty")
)

// ParseFormat accepts the file extension, with or without the leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatTXT:
		return FormatTXT, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Label is the human name used in notices.
func (f Format) Label() string {
	switch f {
	case FormatTXT:
		return "TXT"
	case FormatMarkdown:
		return "Markdown"
	case FormatDOCX:
		return "DOCX"
	}
	return strings.ToUpper(string(f))
}

func (f Format) ContentType() string {
	switch f {
	case FormatTXT:
		return "text/plain; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// File is a finished download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export converts text into the requested format. TXT and Markdown are
// byte-for-byte copies of text; DOCX renders the Markdown first.
func Export(format Format, baseName, text string) (File, error) {
	if strings.TrimSpace(text) == "" {
		return File{}, ErrEmptyDocument
	}
	if baseName == "" {
		baseName = "document"
	}
	file := File{
		Name:        baseName + "." + string(format),
		ContentType: format.ContentType(),
	}

	switch format {
	case FormatTXT, FormatMarkdown:
		file.Data = []byte(text)
	case FormatDOCX:
		rendered, err := RenderHTML(text)
		if err != nil {
			return File{}, err
		}
		data, err := HTMLToDOCX(rendered)
		if err != nil {
			return File{}, err
		}
		file.Data = data
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return file, nil
}
