package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// SessionSweeper removes sessions older than a given age.
type SessionSweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) int
}

type SessionCleanupJob struct {
	sessions SessionSweeper
	maxAge   time.Duration
}

func NewSessionCleanupJob(sessions SessionSweeper, maxAge time.Duration) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, maxAge: maxAge}
}

func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 120 * time.Minute
	}
	removed := j.sessions.Sweep(ctx, maxAge)
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired sessions removed", zap.Int("count", removed), zap.Duration("max_age", maxAge))
	}
	return nil
}
