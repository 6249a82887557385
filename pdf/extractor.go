package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// PageText holds the extracted text of a single PDF page
type PageText struct {
	Number int
	Text   string
}

// Extractor extracts per-page text from PDF files using pdfcpu
type Extractor struct {
	conf   *model.Configuration
	logger *logrus.Logger
}

// NewExtractor creates a new PDF extractor
func NewExtractor(logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{
		conf:   conf,
		logger: logger,
	}
}

// PageCount returns the number of pages in the PDF at path
func (e *Extractor) PageCount(path string) (int, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// ExtractPages extracts readable text from every page of the PDF at path.
// It returns one PageText per page (pages with no extractable text yield an
// empty Text) along with the total page count.
func (e *Extractor) ExtractPages(path string) ([]PageText, int, error) {
	pageCount, err := e.PageCount(path)
	if err != nil {
		return nil, 0, err
	}

	e.logger.WithFields(logrus.Fields{
		"file":  filepath.Base(path),
		"pages": pageCount,
	}).Debug("Extracting text from PDF")

	pages := make([]PageText, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		content, err := e.extractPageContent(path, pageNum)
		if err != nil {
			e.logger.WithError(err).WithField("page", pageNum).Warn("Failed to extract page content")
			pages = append(pages, PageText{Number: pageNum})
			continue
		}
		pages = append(pages, PageText{
			Number: pageNum,
			Text:   contentToText(content),
		})
	}

	return pages, pageCount, nil
}

// extractPageContent extracts the raw content stream of a single page.
// pdfcpu only writes content to files, so extraction goes through a temp dir.
func (e *Extractor) extractPageContent(path string, pageNum int) (string, error) {
	tempDir, err := os.MkdirTemp("", "pdfqa_text_*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			e.logger.WithError(err).Warn("Failed to clean up temp directory")
		}
	}()

	pageSelection := []string{strconv.Itoa(pageNum)}
	if err := api.ExtractContentFile(path, tempDir, pageSelection, e.conf); err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(path), ".pdf")
	contentFile := filepath.Join(tempDir, fmt.Sprintf("%s_Content_page_%d.txt", baseName, pageNum))

	contentBytes, err := os.ReadFile(contentFile)
	if err != nil {
		return "", fmt.Errorf("failed to read content file: %w", err)
	}

	return string(contentBytes), nil
}
