package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type Kind string

const (
	KindImage Kind = "IMAGE"
	KindPDF   Kind = "PDF"
	KindText  Kind = "TEXT" //docx, odt, rtf and plain text all go through cat
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNoText      = errors.New("document has no text")
)

const pageTimeout = 10 * time.Second

// Extractor pulls text out of the attachment types OCR is skipped for.
type Extractor struct {
	logger *logger_i.Logger
}

func NewExtractor() *Extractor {
	return &Extractor{logger: logger_i.NewLogger("Document Extraction")}
}

var textExtensions = map[string]string{
	".docx": ".docx",
	".odt":  ".odt",
	".rtf":  ".rtf",
	".txt":  ".txt",
}

var textContentTypes = map[string]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.oasis.opendocument.text":                                 ".odt",
	"application/rtf": ".rtf",
	"text/rtf":        ".rtf",
	"text/plain":      ".txt",
}

// Classify decides from the attachment content type, falling back to the file name.
func Classify(contentType, name string) Kind {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ct == "application/pdf" || ext == ".pdf":
		return KindPDF
	case textContentTypes[ct] != "" || textExtensions[ext] != "":
		return KindText
	default:
		return KindImage
	}
}

// Extract returns the text of a non-image attachment.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType, name string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document", time.Since(start)) }()
	log := e.logger.WithTrace(ctx)

	var (
		text string
		err  error
	)
	switch Classify(contentType, name) {
	case KindPDF:
		text, err = extractPDF(data, log)
	case KindText:
		text, err = extractWithCat(data, extensionFor(contentType, name))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	if err != nil {
		log.Error("Document extraction failed", "name", name, "error", err)
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extensionFor(contentType, name string) string {
	if ext, ok := textExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := textContentTypes[ct]; ok {
		return ext
	}
	return ".txt"
}

func extractPDF(data []byte, log *logger_i.Logger) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		pages = append(pages, strings.TrimSpace(content))
	}
	return strings.Join(pages, "\n"), nil
}

// the pdf library can spin on malformed content streams
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("timeout")
	}
}

// cat only reads from disk
func extractWithCat(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "attachment-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	text, err := cat.File(f.Name())
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", ext, err)
	}
	return text, nil
}
