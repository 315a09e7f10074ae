package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/filestore"
	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pdfkit"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/pkg/idgen"
)

// SourceResolver maps a caller-visible file reference to a local path.
type SourceResolver interface {
	Resolve(ref string) (string, error)
}

type AssembleResult struct {
	OutputReference string `json:"output_reference"`
	DownloadURL     string `json:"download_url"`
	PageCount       int    `json:"page_count"`
}

type AssembleService struct {
	sources SourceResolver
	engine  pdfkit.Engine
	outputs filestore.Store
	workDir string
	newKey  func() string
}

func NewAssembleService(sources SourceResolver, engine pdfkit.Engine, outputs filestore.Store, workDir string) *AssembleService {
	return &AssembleService{
		sources: sources,
		engine:  engine,
		outputs: outputs,
		workDir: workDir,
		newKey:  idgen.NewOutputKey,
	}
}

// Assemble copies the selected pages, in order, into a new document and stores
// it. An empty selection list yields a zero-page document.
func (s *AssembleService) Assemble(ctx context.Context, selections []model.PageSelection, baseURL string) (*AssembleResult, error) {
	tmp, err := os.MkdirTemp(s.workDir, "assemble-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmp)
	}()

	parts := make([]string, 0, len(selections))
	for i, sel := range selections {
		part := filepath.Join(tmp, fmt.Sprintf("part_%04d.pdf", i))
		if err := s.copyPage(ctx, sel, part); err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	merged := filepath.Join(tmp, "output.pdf")
	if err := s.engine.Merge(ctx, parts, merged); err != nil {
		return nil, fmt.Errorf("merge pages: %w", err)
	}
	key := s.newKey()
	if err := s.store(ctx, merged, key); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("document assembled",
		zap.String("output", key),
		zap.Int("pages", len(parts)))
	return &AssembleResult{
		OutputReference: key,
		DownloadURL:     s.outputs.URL(key, baseURL),
		PageCount:       len(parts),
	}, nil
}

func (s *AssembleService) copyPage(ctx context.Context, sel model.PageSelection, dst string) error {
	path, err := s.sources.Resolve(sel.SourceRef)
	if err != nil {
		return err
	}
	count, err := s.engine.PageCount(ctx, path)
	if err != nil {
		return &ExtractionError{File: sel.SourceRef, Err: err}
	}
	if sel.PageNumber < 0 || sel.PageNumber >= count {
		return fmt.Errorf("page %d of %s (page count %d): %w", sel.PageNumber, sel.SourceRef, count, appErr.ErrInvalidPage)
	}
	if sel.Crop != nil && sel.Crop.HasArea() {
		err := s.copyCropped(ctx, path, sel, dst)
		if err == nil {
			return nil
		}
		logutil.GetLogger(ctx).Warn("crop failed, copying page uncropped",
			zap.String("source", sel.SourceRef),
			zap.Int("page_index", sel.PageNumber),
			zap.Error(err))
		_ = os.Remove(dst)
	}
	if err := s.engine.ExtractPage(ctx, path, sel.PageNumber, nil, dst); err != nil {
		return fmt.Errorf("copy page %d of %s: %w", sel.PageNumber, sel.SourceRef, err)
	}
	return nil
}

func (s *AssembleService) copyCropped(ctx context.Context, path string, sel model.PageSelection, dst string) error {
	box, err := s.engine.PageBox(ctx, path, sel.PageNumber)
	if err != nil {
		return err
	}
	rect := pdfkit.CropToPage(box, *sel.Crop)
	return s.engine.ExtractPage(ctx, path, sel.PageNumber, &rect, dst)
}

func (s *AssembleService) store(ctx context.Context, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if err := s.outputs.Save(ctx, key, file, info.Size()); err != nil {
		return fmt.Errorf("save output %s: %w", key, err)
	}
	return nil
}
