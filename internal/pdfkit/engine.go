package pdfkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Engine copies, crops and merges PDF pages. Every call opens its inputs
// independently so concurrent callers never share a handle.
type Engine interface {
	PageCount(ctx context.Context, path string) (int, error)
	PageBox(ctx context.Context, path string, pageIndex int) (Rect, error)
	ExtractPage(ctx context.Context, path string, pageIndex int, crop *Rect, dst string) error
	Merge(ctx context.Context, parts []string, dst string) error
}

type pdfcpuEngine struct {
	conf *model.Configuration
}

func NewPDFCPUEngine() Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuEngine{conf: conf}
}

func (e *pdfcpuEngine) PageCount(ctx context.Context, path string) (int, error) {
	_ = ctx
	return api.PageCountFile(path)
}

func (e *pdfcpuEngine) PageBox(ctx context.Context, path string, pageIndex int) (Rect, error) {
	_ = ctx
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return Rect{}, err
	}
	boundaries, err := pdfCtx.PageBoundaries(nil)
	if err != nil {
		return Rect{}, err
	}
	if pageIndex < 0 || pageIndex >= len(boundaries) {
		return Rect{}, fmt.Errorf("page index %d out of range", pageIndex)
	}
	box := boundaries[pageIndex].CropBox()
	if box == nil {
		return Rect{}, fmt.Errorf("page %d has no visible box", pageIndex+1)
	}
	return Rect{X0: box.LL.X, Y0: box.LL.Y, X1: box.UR.X, Y1: box.UR.Y}, nil
}

// ExtractPage writes a single-page document holding the given page to dst. A
// non-nil crop (visible-area coordinates) becomes the page's crop box.
func (e *pdfcpuEngine) ExtractPage(ctx context.Context, path string, pageIndex int, crop *Rect, dst string) error {
	page := strconv.Itoa(pageIndex + 1)
	if crop == nil {
		return api.CollectFile(path, dst, []string{page}, e.conf)
	}
	box, err := e.PageBox(ctx, path, pageIndex)
	if err != nil {
		return fmt.Errorf("read page box: %w", err)
	}
	user := toUserSpace(box, *crop)
	desc := fmt.Sprintf("[%.4f %.4f %.4f %.4f]", user.X0, user.Y0, user.X1, user.Y1)
	cropBox, err := api.Box(desc, types.POINTS)
	if err != nil {
		return fmt.Errorf("parse crop box %s: %w", desc, err)
	}
	collected := dst + ".collect"
	if err := api.CollectFile(path, collected, []string{page}, e.conf); err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(collected)
	}()
	return api.CropFile(collected, dst, nil, cropBox, e.conf)
}

func (e *pdfcpuEngine) Merge(ctx context.Context, parts []string, dst string) error {
	_ = ctx
	switch len(parts) {
	case 0:
		return WriteEmpty(dst)
	case 1:
		return copyFile(parts[0], dst)
	}
	return api.MergeCreateFile(parts, dst, false, e.conf)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
