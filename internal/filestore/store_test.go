package filestore

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/examforge/internal/config"
)

func TestLocalStoreSaveOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	src, err := os.CreateTemp(t.TempDir(), "src-*")
	require.NoError(t, err)
	_, err = src.WriteString("%PDF-1.4 body")
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, store.Save(context.Background(), "exam_1.pdf", src, 13))
	rc, err := store.Open(context.Background(), "exam_1.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 body", string(data))

	require.Equal(t, "http://host/generated/exam_1.pdf", store.URL("exam_1.pdf", "http://host/"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	_, err = store.Open(context.Background(), "../etc/passwd")
	require.Error(t, err)
	err = store.Save(context.Background(), "a/b.pdf", nil, 0)
	require.Error(t, err)
}

func TestLocalStorePublicURL(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir(), "public_url": "https://cdn.example.com/out/"}})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/out/x.pdf", store.URL("x.pdf", "http://ignored"))
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{})
	require.Error(t, err)
}

func TestBuildS3BaseURL(t *testing.T) {
	require.Equal(t, "https://s3.example.com/bucket", buildS3BaseURL("s3.example.com", "bucket", true))
	require.True(t, strings.HasPrefix(buildS3BaseURL("http://minio:9000", "b", true), "http://minio:9000/b"))
}
