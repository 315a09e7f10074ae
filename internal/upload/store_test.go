package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
)

func TestSaveAndResolve(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	key, path, err := store.Save("f1", "paper.pdf", strings.NewReader("data"))
	require.NoError(t, err)
	require.Equal(t, "f1_paper.pdf", key)
	require.Equal(t, filepath.Join(store.Dir(), key), path)

	got, err := store.Resolve("f1_paper.pdf")
	require.NoError(t, err)
	require.Equal(t, path, got)

	got, err = store.Resolve("paper.pdf")
	require.NoError(t, err)
	require.Equal(t, path, got)

	_, err = store.Resolve("other.pdf")
	require.ErrorIs(t, err, appErr.ErrSourceNotFound)

	_, err = store.Resolve("../paper.pdf")
	require.ErrorIs(t, err, appErr.ErrSourceNotFound)
}

func TestResolveSuffixIsDeterministic(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, _, err = store.Save("b", "exam.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	_, _, err = store.Save("a", "exam.pdf", strings.NewReader("a"))
	require.NoError(t, err)

	got, err := store.Resolve("exam.pdf")
	require.NoError(t, err)
	require.Equal(t, "a_exam.pdf", filepath.Base(got))
}

func TestSafeName(t *testing.T) {
	require.Equal(t, "x.pdf", SafeName("../../x.pdf"))
	require.Equal(t, "x.pdf", SafeName(`C:\docs\x.pdf`))
	require.Equal(t, "upload.pdf", SafeName(".."))
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	_, err = store.Path("sub")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = store.Path("a/b")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
