package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pdfkit"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/upload"
)

type assembleFixture struct {
	svc    *AssembleService
	engine *fakeEngine
	store  *memStore
	keyA   string
	keyB   string
}

func newAssembleFixture(t *testing.T) *assembleFixture {
	t.Helper()
	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)
	keyA, pathA, err := uploads.Save("11111111-aaaa", "fileA.pdf", strings.NewReader("A"))
	require.NoError(t, err)
	keyB, pathB, err := uploads.Save("22222222-bbbb", "fileB.pdf", strings.NewReader("B"))
	require.NoError(t, err)
	engine := &fakeEngine{
		counts: map[string]int{pathA: 3, pathB: 1},
		box:    pdfkit.Rect{X0: 0, Y0: 0, X1: 600, Y1: 800},
	}
	store := newMemStore()
	svc := NewAssembleService(uploads, engine, store, t.TempDir())
	svc.newKey = func() string { return "exam_test.pdf" }
	return &assembleFixture{svc: svc, engine: engine, store: store, keyA: keyA, keyB: keyB}
}

func TestAssemblePreservesSelectionOrder(t *testing.T) {
	fx := newAssembleFixture(t)
	out, err := fx.svc.Assemble(context.Background(), []model.PageSelection{
		{SourceRef: "fileA.pdf", PageNumber: 2},
		{SourceRef: "fileB.pdf", PageNumber: 0},
		{SourceRef: fx.keyA, PageNumber: 0},
	}, "http://host")
	require.NoError(t, err)
	require.Equal(t, "exam_test.pdf", out.OutputReference)
	require.Equal(t, "http://host/generated/exam_test.pdf", out.DownloadURL)
	require.Equal(t, 3, out.PageCount)
	require.Equal(t, "fileA.pdf#2\nfileB.pdf#0\nfileA.pdf#0", string(fx.store.files["exam_test.pdf"]))
}

func TestAssembleEmptySelection(t *testing.T) {
	fx := newAssembleFixture(t)
	out, err := fx.svc.Assemble(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, 0, out.PageCount)
	require.Equal(t, 0, fx.engine.mergeSize)
	_, ok := fx.store.files["exam_test.pdf"]
	require.True(t, ok)
}

func TestAssembleSourceNotFound(t *testing.T) {
	fx := newAssembleFixture(t)
	_, err := fx.svc.Assemble(context.Background(), []model.PageSelection{{SourceRef: "missing.pdf"}}, "")
	require.ErrorIs(t, err, appErr.ErrSourceNotFound)
	require.Empty(t, fx.store.files)
}

func TestAssembleInvalidPage(t *testing.T) {
	fx := newAssembleFixture(t)
	for _, page := range []int{-1, 1, 5} {
		_, err := fx.svc.Assemble(context.Background(), []model.PageSelection{{SourceRef: "fileB.pdf", PageNumber: page}}, "")
		require.ErrorIs(t, err, appErr.ErrInvalidPage, page)
	}
}

func TestAssembleCrop(t *testing.T) {
	fx := newAssembleFixture(t)
	_, err := fx.svc.Assemble(context.Background(), []model.PageSelection{
		{SourceRef: "fileA.pdf", PageNumber: 0, Crop: &model.CropRect{X: 0, Y: 0, W: 1, H: 1}},
		{SourceRef: "fileA.pdf", PageNumber: 1, Crop: &model.CropRect{X: 0.5, Y: 0.25, W: 0.5, H: 0.5}},
		{SourceRef: "fileA.pdf", PageNumber: 2, Crop: &model.CropRect{X: 0.5, Y: 0.5, W: 0, H: 0.5}},
	}, "")
	require.NoError(t, err)
	require.Len(t, fx.engine.crops, 2)
	require.Equal(t, fx.engine.box, fx.engine.crops[0])
	require.Equal(t, pdfkit.Rect{X0: 300, Y0: 200, X1: 600, Y1: 600}, fx.engine.crops[1])
	require.Equal(t, "fileA.pdf#0+crop\nfileA.pdf#1+crop\nfileA.pdf#2", string(fx.store.files["exam_test.pdf"]))
}

func TestAssembleCropFailureCopiesUncropped(t *testing.T) {
	fx := newAssembleFixture(t)
	fx.engine.cropErr = errors.New("bad box")
	out, err := fx.svc.Assemble(context.Background(), []model.PageSelection{
		{SourceRef: "fileB.pdf", PageNumber: 0, Crop: &model.CropRect{X: 0.1, Y: 0.1, W: 0.5, H: 0.5}},
	}, "")
	require.NoError(t, err)
	require.Equal(t, 1, out.PageCount)
	require.Equal(t, "fileB.pdf#0", string(fx.store.files["exam_test.pdf"]))
}

func TestAssembleSuffixMatchIsDeterministic(t *testing.T) {
	fx := newAssembleFixture(t)
	uploads := fx.svc.sources.(*upload.Store)
	_, pathZ, err := uploads.Save("00000000-zzzz", "fileB.pdf", strings.NewReader("B2"))
	require.NoError(t, err)
	fx.engine.counts[pathZ] = 2
	resolved, err := uploads.Resolve("fileB.pdf")
	require.NoError(t, err)
	require.Equal(t, pathZ, resolved)
	require.Equal(t, "00000000-zzzz_fileB.pdf", filepath.Base(pathZ))
}
