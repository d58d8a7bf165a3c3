package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadImageNames(t *testing.T) {
	names, err := ReadImageNames(strings.NewReader("./IMG_0001.jpg 0 532.1\n\n  ./IMG_0002.jpg\n./IMG_0003.jpg 0 500\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"./IMG_0001.jpg", "./IMG_0002.jpg", "./IMG_0003.jpg"}, names)
}

func writeProject(t *testing.T, bundle, list string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, BundleFileName)
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))
	if list != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ImageListName), []byte(list), 0o644))
	}
	return path
}

func TestLoad(t *testing.T) {
	bundle := bundleText([]testCamera{identityCamera(), identityCamera()}, nil)

	t.Run("pairs names with poses", func(t *testing.T) {
		rec, err := Load(writeProject(t, bundle, "a.jpg 0 1\nb.jpg 0 1\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, rec.Images)
		assert.Len(t, rec.Poses, 2)
	})

	t.Run("name count must match cameras", func(t *testing.T) {
		_, err := Load(writeProject(t, bundle, "a.jpg\n"), Options{})
		var dim *DimensionMismatchError
		require.ErrorAs(t, err, &dim)
		assert.Equal(t, NameListRecord, dim.Record)
		assert.Equal(t, 2, dim.Expected)
		assert.Equal(t, 1, dim.Actual)
		assert.Equal(t, "bundler: dimension mismatch in image list: expected 2 names, got 1", err.Error())
	})

	t.Run("missing list", func(t *testing.T) {
		path := writeProject(t, bundle, "")
		_, err := Load(path, Options{})
		assert.ErrorIs(t, err, ErrFileNotFound)

		rec, err := Load(path, Options{SkipImageNames: true})
		require.NoError(t, err)
		assert.Nil(t, rec.Images)
		assert.Len(t, rec.Poses, 2)
	})
}
