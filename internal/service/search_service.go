package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/ai"
	"github.com/xxxsen/examforge/internal/extract"
	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/session"
)

// EmptyResults is the raw output returned whenever a search cannot run.
const EmptyResults = "[]"

type QuestionFinder interface {
	FindQuestions(ctx context.Context, documentText, query string, images []ai.Image) (string, error)
}

type SearchService struct {
	sessions  *session.Registry
	renderer  extract.Renderer
	finder    QuestionFinder
	estimator session.Estimator
	promptDPI int
}

func NewSearchService(sessions *session.Registry, renderer extract.Renderer, finder QuestionFinder, estimator session.Estimator, promptDPI int) *SearchService {
	return &SearchService{sessions: sessions, renderer: renderer, finder: finder, estimator: estimator, promptDPI: promptDPI}
}

// Search runs the query against a registered session. Unknown ids and the
// failed-session sentinel yield EmptyResults.
func (s *SearchService) Search(ctx context.Context, sessionID, query string) string {
	sess, err := s.sessions.Lookup(sessionID)
	if err != nil {
		logutil.GetLogger(ctx).Info("search on unknown session", zap.String("session_id", sessionID))
		return EmptyResults
	}
	return s.SearchSession(ctx, sess, query)
}

// SearchSession invokes the inference collaborator at most once. Any failure,
// including an estimate above the hard limit, yields EmptyResults.
func (s *SearchService) SearchSession(ctx context.Context, sess *model.DocumentSession, query string) string {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sess.SessionID))
	pages := sess.TotalPages()
	tokens := s.estimator.Query(sess.AggregatedText, pages, query)
	if s.estimator.OverHard(tokens) {
		logger.Error("search aborted: token estimate above hard limit",
			zap.Int("estimated_tokens", tokens),
			zap.Int("hard_limit", s.estimator.Budget().HardLimit))
		return EmptyResults
	}
	images := s.renderPages(ctx, sess)
	if s.finder == nil {
		logger.Error("search aborted: no inference provider configured")
		return EmptyResults
	}
	raw, err := s.finder.FindQuestions(ctx, sess.AggregatedText, query, images)
	if err != nil {
		logger.Error("inference call failed", zap.Error(err))
		return EmptyResults
	}
	logger.Info("search finished",
		zap.Int("estimated_tokens", tokens),
		zap.Int("images", len(images)),
		zap.Int("response_len", len(raw)))
	return raw
}

// Query is Search followed by Reconcile.
func (s *SearchService) Query(ctx context.Context, sessionID, query string) ([]model.SearchResult, *model.DocumentSession, error) {
	sess, err := s.sessions.Lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}
	raw := s.SearchSession(ctx, sess, query)
	results, err := Reconcile(ctx, raw, sess)
	if err != nil {
		return nil, sess, err
	}
	return results, sess, nil
}

func (s *SearchService) renderPages(ctx context.Context, sess *model.DocumentSession) []ai.Image {
	if s.renderer == nil {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	images := make([]ai.Image, 0, sess.TotalPages())
	for _, f := range sess.Files {
		for i := range f.Pages {
			data, err := s.renderer.Render(ctx, f.StoragePath, i, s.promptDPI)
			if err != nil {
				logger.Warn("render page for prompt failed",
					zap.String("file_id", f.FileID),
					zap.Int("page", i+1),
					zap.Error(err))
				continue
			}
			images = append(images, ai.Image{MIMEType: "image/png", Data: data})
		}
	}
	return images
}
