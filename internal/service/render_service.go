package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/examforge/internal/extract"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/session"
)

type RenderService struct {
	sessions *session.Registry
	renderer extract.Renderer
	dpi      int
}

func NewRenderService(sessions *session.Registry, renderer extract.Renderer, dpi int) *RenderService {
	return &RenderService{sessions: sessions, renderer: renderer, dpi: dpi}
}

// Render resolves a render reference (file id, zero-indexed page) to PNG bytes.
func (s *RenderService) Render(ctx context.Context, fileID string, pageIndex int) ([]byte, error) {
	file, ok := s.sessions.File(fileID)
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, appErr.ErrNotFound)
	}
	if !file.HasPage(pageIndex + 1) {
		return nil, fmt.Errorf("page %d of %s: %w", pageIndex, fileID, appErr.ErrNotFound)
	}
	return s.renderer.Render(ctx, file.StoragePath, pageIndex, s.dpi)
}
