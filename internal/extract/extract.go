package extract

import "context"

// Extractor yields per-page plain text for a stored document.
type Extractor interface {
	PageCount(ctx context.Context, path string) (int, error)
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// Renderer yields PNG bytes for one page. pageIndex is zero-indexed.
type Renderer interface {
	Render(ctx context.Context, path string, pageIndex int, dpi int) ([]byte, error)
}
