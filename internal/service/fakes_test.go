package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xxxsen/examforge/internal/ai"
	"github.com/xxxsen/examforge/internal/config"
	"github.com/xxxsen/examforge/internal/filestore"
	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pdfkit"
	"github.com/xxxsen/examforge/internal/session"
)

type fakeExtractor struct {
	count int
	texts []string
	err   error
}

func (f *fakeExtractor) PageCount(ctx context.Context, path string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func (f *fakeExtractor) PageTexts(ctx context.Context, path string) ([]string, error) {
	return f.texts, nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	fail  map[int]bool
}

func (f *fakeRenderer) Render(ctx context.Context, path string, pageIndex int, dpi int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[pageIndex] {
		return nil, errors.New("render failed")
	}
	return []byte(fmt.Sprintf("%s#%d@%d", path, pageIndex, dpi)), nil
}

type countingFinder struct {
	calls  int
	reply  string
	err    error
	images []ai.Image
	text   string
	query  string
}

func (c *countingFinder) FindQuestions(ctx context.Context, documentText, query string, images []ai.Image) (string, error) {
	c.calls++
	c.images = images
	c.text = documentText
	c.query = query
	return c.reply, c.err
}

// fakeEngine writes plain-text "pages" so tests can read back what was copied.
type fakeEngine struct {
	counts    map[string]int
	box       pdfkit.Rect
	cropErr   error
	crops     []pdfkit.Rect
	mergeSize int
}

func (f *fakeEngine) PageCount(ctx context.Context, path string) (int, error) {
	n, ok := f.counts[path]
	if !ok {
		return 0, errors.New("not a pdf")
	}
	return n, nil
}

func (f *fakeEngine) PageBox(ctx context.Context, path string, pageIndex int) (pdfkit.Rect, error) {
	return f.box, nil
}

func (f *fakeEngine) ExtractPage(ctx context.Context, path string, pageIndex int, crop *pdfkit.Rect, dst string) error {
	label := fmt.Sprintf("%s#%d", path[strings.LastIndex(path, "_")+1:], pageIndex)
	if crop != nil {
		if f.cropErr != nil {
			return f.cropErr
		}
		f.crops = append(f.crops, *crop)
		label += "+crop"
	}
	return os.WriteFile(dst, []byte(label), 0o644)
}

func (f *fakeEngine) Merge(ctx context.Context, parts []string, dst string) error {
	f.mergeSize = len(parts)
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		labels = append(labels, string(data))
	}
	return os.WriteFile(dst, []byte(strings.Join(labels, "\n")), 0o644)
}

type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Type() string {
	return "mem"
}

func (m *memStore) URL(key, baseURL string) string {
	return baseURL + "/generated/" + key
}

func (m *memStore) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = data
	return nil
}

func (m *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestRegistry(maxSessions int) *session.Registry {
	return session.NewRegistry(session.NewEstimator(config.DefaultBudget()), maxSessions)
}

func testFile(id, name string, pages int) *model.FileRecord {
	f := &model.FileRecord{FileID: id, OriginalName: name, StorageKey: id + "_" + name, StoragePath: "/data/" + id + "_" + name}
	for i := 0; i < pages; i++ {
		f.Pages = append(f.Pages, model.PageRecord{PageNumber: i + 1, Text: fmt.Sprintf("page %d", i+1), RenderRef: model.RenderRef(id, i)})
	}
	return f
}
