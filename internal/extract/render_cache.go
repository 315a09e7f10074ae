package extract

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func WrapLruCacheToRenderer(r Renderer, size int, ttl time.Duration) Renderer {
	if r == nil || size <= 0 || ttl <= 0 {
		return r
	}
	return &lruRenderer{
		next:  r,
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

type lruRenderer struct {
	next  Renderer
	cache *expirable.LRU[string, []byte]
}

func (l *lruRenderer) Render(ctx context.Context, path string, pageIndex int, dpi int) ([]byte, error) {
	key := path + "|" + strconv.Itoa(pageIndex) + "|" + strconv.Itoa(dpi)
	if cached, ok := l.cache.Get(key); ok {
		logutil.GetLogger(ctx).Debug("render cache hit", zap.Int("page_index", pageIndex), zap.Int("dpi", dpi))
		return cached, nil
	}
	res, err := l.next.Render(ctx, path, pageIndex, dpi)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, res)
	return res, nil
}
