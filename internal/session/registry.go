package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/model"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/pkg/idgen"
)

type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*model.DocumentSession
	files       map[string]*model.FileRecord
	estimator   Estimator
	maxSessions int
	now         func() time.Time
	newID       func() string
}

func NewRegistry(estimator Estimator, maxSessions int) *Registry {
	return &Registry{
		sessions:    make(map[string]*model.DocumentSession),
		files:       make(map[string]*model.FileRecord),
		estimator:   estimator,
		maxSessions: maxSessions,
		now:         time.Now,
		newID:       idgen.NewSessionID,
	}
}

// AggregateText joins every page of every file, in upload order, behind its markers.
func AggregateText(files []*model.FileRecord) string {
	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(model.DocumentMarker(f.OriginalName))
		for _, p := range f.Pages {
			sb.WriteString(model.PageMarker(p.PageNumber, f.OriginalName))
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Register builds a session from indexed files. An estimate above the soft
// limit is logged and the session is still registered.
func (r *Registry) Register(ctx context.Context, files []*model.FileRecord) (*model.DocumentSession, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files: %w", appErr.ErrSessionCreation)
	}
	sess := &model.DocumentSession{
		Files:          append([]*model.FileRecord(nil), files...),
		AggregatedText: AggregateText(files),
	}
	logger := logutil.GetLogger(ctx)
	tokens := r.estimator.Session(sess.AggregatedText, sess.TotalPages())
	if r.estimator.OverSoft(tokens) {
		logger.Warn("session content exceeds soft token budget",
			zap.Int("estimated_tokens", tokens),
			zap.Int("soft_limit", r.estimator.Budget().SoftLimit),
			zap.Int("pages", sess.TotalPages()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return nil, fmt.Errorf("session limit %d reached: %w", r.maxSessions, appErr.ErrSessionCreation)
	}
	id := r.newID()
	for _, exists := r.sessions[id]; exists; _, exists = r.sessions[id] {
		id = r.newID()
	}
	sess.SessionID = id
	sess.CreatedAt = r.now()
	r.sessions[id] = sess
	for _, f := range sess.Files {
		r.files[f.FileID] = f
	}
	logger.Info("session registered",
		zap.String("session_id", id),
		zap.Int("files", len(sess.Files)),
		zap.Int("pages", sess.TotalPages()),
		zap.Int("estimated_tokens", tokens))
	return sess, nil
}

func (r *Registry) Lookup(sessionID string) (*model.DocumentSession, error) {
	if sessionID == "" || sessionID == model.FailedSessionID {
		return nil, appErr.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return sess, nil
}

// File returns the indexed file with the given id, if its session is still live.
func (r *Registry) File(fileID string) (*model.FileRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[fileID]
	return f, ok
}

func (r *Registry) Delete(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(sessionID)
}

// Sweep drops sessions created more than maxAge ago and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context, maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	r.mu.Lock()
	removed := make([]string, 0)
	for id, sess := range r.sessions {
		if sess.CreatedAt.Before(cutoff) {
			r.removeLocked(id)
			removed = append(removed, id)
		}
	}
	r.mu.Unlock()

	logger := logutil.GetLogger(ctx)
	for _, id := range removed {
		logger.Info("session expired", zap.String("session_id", id))
	}
	return len(removed)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) removeLocked(sessionID string) bool {
	sess, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	delete(r.sessions, sessionID)
	for _, f := range sess.Files {
		delete(r.files, f.FileID)
	}
	return true
}
