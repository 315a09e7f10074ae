package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/model"
)

type InstantResult struct {
	*AssembleResult
	Results    []model.SearchResult  `json:"results"`
	Selections []model.PageSelection `json:"selections"`
}

type InstantService struct {
	search   *SearchService
	assemble *AssembleService
}

func NewInstantService(search *SearchService, assemble *AssembleService) *InstantService {
	return &InstantService{search: search, assemble: assemble}
}

// Generate searches a session and assembles every matched page, in result
// order, into one document.
func (s *InstantService) Generate(ctx context.Context, sessionID, query, baseURL string) (*InstantResult, error) {
	results, sess, err := s.search.Query(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}
	selections := SelectionsFromResults(sess, results)
	logutil.GetLogger(ctx).Info("instant generation",
		zap.String("session_id", sessionID),
		zap.Int("results", len(results)),
		zap.Int("pages", len(selections)))
	out, err := s.assemble.Assemble(ctx, selections, baseURL)
	if err != nil {
		return nil, err
	}
	return &InstantResult{AssembleResult: out, Results: results, Selections: selections}, nil
}

// SelectionsFromResults keeps results that point at a real page and converts
// them to zero-indexed selections against the stored file key.
func SelectionsFromResults(sess *model.DocumentSession, results []model.SearchResult) []model.PageSelection {
	out := make([]model.PageSelection, 0, len(results))
	if sess == nil {
		return out
	}
	for _, res := range results {
		if res.RenderRef == nil {
			continue
		}
		file, _ := ResolveFile(sess.Files, res.SourceFile)
		if file == nil || !file.HasPage(res.PageNumber) {
			continue
		}
		out = append(out, model.PageSelection{SourceRef: file.StorageKey, PageNumber: res.PageNumber - 1})
	}
	return out
}
