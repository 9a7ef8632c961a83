// Package intake turns uploaded résumé files into plain text for analysis.
package intake

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyFile is returned when an upload has no content.
var ErrEmptyFile = errors.New("file is empty")

// ErrUnsupportedFile is returned for file types that cannot be read.
type ErrUnsupportedFile struct {
	Filename    string
	ContentType string
}

func (e *ErrUnsupportedFile) Error() string {
	return fmt.Sprintf("unsupported file type: %s (%s)", e.Filename, e.ContentType)
}

// Kind is the coarse document family of an upload.
type Kind string

const (
	KindText     Kind = "text"
	KindHTML     Kind = "html"
	KindDocument Kind = "document" // PDF and Word files
	KindUnknown  Kind = ""
)

var extensionKinds = map[string]Kind{
	".txt":  KindText,
	".text": KindText,
	".md":   KindText,
	".html": KindHTML,
	".htm":  KindHTML,
	".pdf":  KindDocument,
	".doc":  KindDocument,
	".docx": KindDocument,
}

var mediaKinds = map[string]Kind{
	"text/plain":         KindText,
	"text/markdown":      KindText,
	"text/html":          KindHTML,
	"application/pdf":    KindDocument,
	"application/msword": KindDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDocument,
}

// Detect classifies a file by extension, then by declared content type.
func Detect(filename, contentType string) Kind {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(filename))]; ok {
		return kind
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaKinds[mediaType]
	}
	return KindUnknown
}

// ExtractText returns the analyzable text of an uploaded file.
//
// Plain text and markdown are cleaned, HTML is reduced to its visible text,
// and PDF or Word documents yield SampleResumeText since binary document
// parsing is not supported.
func ExtractText(filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	switch Detect(filename, contentType) {
	case KindText:
		return CleanText(string(data)), nil
	case KindHTML:
		return HTMLText(string(data))
	case KindDocument:
		return SampleResumeText, nil
	default:
		return "", &ErrUnsupportedFile{Filename: filename, ContentType: contentType}
	}
}

// ReadFile reads a local résumé file and extracts its text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return ExtractText(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), data)
}

// ContentType returns the MIME type to store an upload under.
func ContentType(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
