package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/model"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/pkg/idgen"
	"github.com/xxxsen/examforge/internal/session"
	"github.com/xxxsen/examforge/internal/upload"
)

type IncomingFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type UploadResult struct {
	SessionID string
	Files     []*model.FileRecord
}

type UploadService struct {
	uploads  *upload.Store
	indexer  *PageIndexer
	sessions *session.Registry
}

func NewUploadService(uploads *upload.Store, indexer *PageIndexer, sessions *session.Registry) *UploadService {
	return &UploadService{uploads: uploads, indexer: indexer, sessions: sessions}
}

func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// CreateSession stores and indexes every PDF in the batch, then registers a
// session. A registration failure degrades to model.FailedSessionID.
func (s *UploadService) CreateSession(ctx context.Context, files []IncomingFile) (*UploadResult, error) {
	logger := logutil.GetLogger(ctx)
	records := make([]*model.FileRecord, 0, len(files))
	var saved []string
	cleanup := func() {
		for _, path := range saved {
			_ = os.Remove(path)
		}
	}
	for _, in := range files {
		if !IsPDFName(in.Name) {
			logger.Info("skip non-pdf upload", zap.String("file", in.Name))
			continue
		}
		rec, path, err := s.ingest(ctx, in)
		if path != "" {
			saved = append(saved, path)
		}
		if err != nil {
			cleanup()
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no pdf files in upload: %w", appErr.ErrInvalid)
	}
	sess, err := s.sessions.Register(ctx, records)
	if err != nil {
		logger.Error("register session failed", zap.Error(err))
		return &UploadResult{SessionID: model.FailedSessionID, Files: records}, nil
	}
	return &UploadResult{SessionID: sess.SessionID, Files: sess.Files}, nil
}

func (s *UploadService) ingest(ctx context.Context, in IncomingFile) (*model.FileRecord, string, error) {
	src, err := in.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload %s: %w", in.Name, err)
	}
	defer src.Close()
	fileID := idgen.NewFileID()
	key, path, err := s.uploads.Save(fileID, in.Name, src)
	if err != nil {
		return nil, "", fmt.Errorf("save upload %s: %w", in.Name, err)
	}
	rec, err := s.indexer.Index(ctx, UploadedFile{
		FileID:       fileID,
		OriginalName: in.Name,
		StorageKey:   key,
		Path:         path,
	})
	if err != nil {
		return nil, path, err
	}
	return rec, path, nil
}
