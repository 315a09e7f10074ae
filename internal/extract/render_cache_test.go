package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	calls int
	fail  bool
}

func (c *countingRenderer) Render(ctx context.Context, path string, pageIndex int, dpi int) ([]byte, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("boom")
	}
	return []byte{byte(pageIndex), byte(dpi)}, nil
}

func TestLruRendererCachesByPageAndDPI(t *testing.T) {
	next := &countingRenderer{}
	r := WrapLruCacheToRenderer(next, 10, time.Minute)

	out, err := r.Render(context.Background(), "/a.pdf", 1, 72)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 72}, out)
	_, err = r.Render(context.Background(), "/a.pdf", 1, 72)
	require.NoError(t, err)
	require.Equal(t, 1, next.calls)

	_, err = r.Render(context.Background(), "/a.pdf", 1, 144)
	require.NoError(t, err)
	_, err = r.Render(context.Background(), "/b.pdf", 1, 72)
	require.NoError(t, err)
	require.Equal(t, 3, next.calls)
}

func TestLruRendererDoesNotCacheErrors(t *testing.T) {
	next := &countingRenderer{fail: true}
	r := WrapLruCacheToRenderer(next, 10, time.Minute)
	_, err := r.Render(context.Background(), "/a.pdf", 0, 72)
	require.Error(t, err)
	_, err = r.Render(context.Background(), "/a.pdf", 0, 72)
	require.Error(t, err)
	require.Equal(t, 2, next.calls)
}

func TestWrapDisabled(t *testing.T) {
	next := &countingRenderer{}
	require.Same(t, Renderer(next), WrapLruCacheToRenderer(next, 0, time.Minute))
}

func TestSplitPages(t *testing.T) {
	require.Equal(t, []string{"one", "two"}, SplitPages("one\ftwo\f", 2))
	require.Equal(t, []string{"one", "", ""}, SplitPages("one\f", 3))
	require.Equal(t, []string{"a"}, SplitPages("a\fb\fc", 1))
}
