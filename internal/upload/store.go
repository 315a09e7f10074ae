package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
)

// Store keeps uploaded source files under "<file_id>_<original name>" in one
// directory. The original name stays a suffix of the key.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func BuildKey(fileID, originalName string) string {
	return fileID + "_" + SafeName(originalName)
}

// SafeName strips any directory components a client put in the file name.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return "upload.pdf"
	}
	return name
}

func (s *Store) Save(fileID, originalName string, r io.Reader) (string, string, error) {
	key := BuildKey(fileID, originalName)
	path := filepath.Join(s.dir, key)
	out, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", "", err
	}
	if err := out.Close(); err != nil {
		return "", "", err
	}
	return key, path, nil
}

func (s *Store) Path(key string) (string, error) {
	if !validKey(key) {
		return "", appErr.ErrInvalid
	}
	path := filepath.Join(s.dir, key)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", appErr.ErrNotFound
	}
	return path, nil
}

// Resolve maps a caller-visible reference to a stored file. An exact key wins;
// otherwise the first key (in lexical order) ending in "_<ref>" is used.
func (s *Store) Resolve(ref string) (string, error) {
	if path, err := s.Path(ref); err == nil {
		return path, nil
	}
	if !validKey(ref) {
		return "", fmt.Errorf("source file %s: %w", ref, appErr.ErrSourceNotFound)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("list uploads: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	suffix := "_" + ref
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return filepath.Join(s.dir, name), nil
		}
	}
	return "", fmt.Errorf("source file %s: %w", ref, appErr.ErrSourceNotFound)
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.Contains(key, "/") && !strings.Contains(key, "\\")
}
