package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Poppler extracts text with pdftotext and renders pages with pdftoppm. Page
// counting goes through pdfcpu so an unreadable file fails before any process
// is spawned.
type Poppler struct {
	textBin   string
	renderBin string
}

func NewPoppler() *Poppler {
	return &Poppler{textBin: "pdftotext", renderBin: "pdftoppm"}
}

func (p *Poppler) Check() error {
	for _, bin := range []string{p.textBin, p.renderBin} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: install poppler-utils", bin)
		}
	}
	return nil
}

func (p *Poppler) PageCount(ctx context.Context, path string) (int, error) {
	_ = ctx
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pdf %s: %w", filepath.Base(path), err)
	}
	return count, nil
}

func (p *Poppler) PageTexts(ctx context.Context, path string) ([]string, error) {
	count, err := p.PageCount(ctx, path)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []string{}, nil
	}
	cmd := exec.CommandContext(ctx, p.textBin, "-layout", "-enc", "UTF-8", path, "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext %s: %w: %s", filepath.Base(path), err, strings.TrimSpace(stderr.String()))
	}
	return SplitPages(string(out), count), nil
}

// SplitPages splits pdftotext output on form feeds and pads or trims the
// result to exactly count pages.
func SplitPages(out string, count int) []string {
	parts := strings.Split(out, "\f")
	pages := make([]string, count)
	for i := 0; i < count && i < len(parts); i++ {
		pages[i] = parts[i]
	}
	return pages
}

func (p *Poppler) Render(ctx context.Context, path string, pageIndex int, dpi int) ([]byte, error) {
	if pageIndex < 0 {
		return nil, fmt.Errorf("invalid page index %d", pageIndex)
	}
	if dpi <= 0 {
		dpi = 72
	}
	tmpDir, err := os.MkdirTemp("", "examforge-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()
	page := strconv.Itoa(pageIndex + 1)
	root := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, p.renderBin,
		"-png", "-singlefile",
		"-r", strconv.Itoa(dpi),
		"-f", page, "-l", page,
		path, root,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s page %s: %w: %s", filepath.Base(path), page, err, strings.TrimSpace(stderr.String()))
	}
	return os.ReadFile(root + ".png")
}
