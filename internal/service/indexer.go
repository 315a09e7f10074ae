package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/extract"
	"github.com/xxxsen/examforge/internal/model"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
)

// UploadedFile is a source document already persisted by the upload store.
type UploadedFile struct {
	FileID       string
	OriginalName string
	StorageKey   string
	Path         string
}

type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{appErr.ErrExtraction, e.Err}
}

type PageIndexer struct {
	extractor extract.Extractor
}

func NewPageIndexer(extractor extract.Extractor) *PageIndexer {
	return &PageIndexer{extractor: extractor}
}

// Index produces one PageRecord per page, numbered 1..N. Blank pages carry the
// scanned-page warning text instead of their (empty) content.
func (p *PageIndexer) Index(ctx context.Context, file UploadedFile) (*model.FileRecord, error) {
	count, err := p.extractor.PageCount(ctx, file.Path)
	if err != nil {
		return nil, &ExtractionError{File: file.OriginalName, Err: err}
	}
	texts, err := p.extractor.PageTexts(ctx, file.Path)
	if err != nil {
		return nil, &ExtractionError{File: file.OriginalName, Err: err}
	}
	logger := logutil.GetLogger(ctx).With(zap.String("file_id", file.FileID), zap.String("file", file.OriginalName))
	rec := &model.FileRecord{
		FileID:       file.FileID,
		OriginalName: file.OriginalName,
		StorageKey:   file.StorageKey,
		StoragePath:  file.Path,
		Pages:        make([]model.PageRecord, 0, count),
	}
	for i := 0; i < count; i++ {
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		page := model.PageRecord{
			PageNumber: i + 1,
			Text:       text,
			RenderRef:  model.RenderRef(file.FileID, i),
		}
		if strings.TrimSpace(text) == "" {
			page.Text = model.ScannedPageText(i + 1)
			page.Scanned = true
			logger.Warn("page has no extractable text", zap.Int("page", i+1))
		}
		rec.Pages = append(rec.Pages, page)
	}
	logger.Info("file indexed", zap.Int("pages", count))
	return rec, nil
}
