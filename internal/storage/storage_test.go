package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagekeep/pagekeep/internal/model"
)

func TestFilesystemStrategySaveLoad(t *testing.T) {
	dir := t.TempDir()
	strategy := NewFilesystemStrategy(dir)
	payload := []byte("epub content")

	file, err := strategy.Save("doc-1", model.KindEpub, "application/epub+zip", payload)
	assert.NoError(t, err)
	assert.NotNil(t, file.FilePath)
	assert.Empty(t, file.FileData)
	assert.True(t, strings.HasSuffix(*file.FilePath, "-doc-1.epub"))

	loaded, err := strategy.Load(file)
	assert.NoError(t, err)
	assert.Equal(t, payload, loaded)

	assert.NoError(t, strategy.Remove(file))
	_, err = os.Stat(*file.FilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStrategyLoadFallsBackToInlineData(t *testing.T) {
	strategy := NewFilesystemStrategy(t.TempDir())
	file := &model.DocumentFile{
		DocumentID: "doc-1",
		FileData:   []byte("inline bytes"),
		MimeType:   "application/pdf",
	}

	loaded, err := strategy.Load(file)
	assert.NoError(t, err)
	assert.Equal(t, []byte("inline bytes"), loaded)
}

func TestDatabaseStrategySaveLoad(t *testing.T) {
	strategy := NewDatabaseStrategy()
	payload := []byte("pdf content")

	file, err := strategy.Save("doc-2", model.KindPdf, "application/pdf", payload)
	assert.NoError(t, err)
	assert.Nil(t, file.FilePath)
	assert.Equal(t, payload, file.FileData)

	loaded, err := strategy.Load(file)
	assert.NoError(t, err)
	assert.Equal(t, payload, loaded)
}

func TestDatabaseStrategyLoadFallsBackToPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.pdf")
	assert.NoError(t, os.WriteFile(path, []byte("on disk"), 0o644))

	strategy := NewDatabaseStrategy()
	file := &model.DocumentFile{DocumentID: "doc-3", FilePath: &path, MimeType: "application/pdf"}

	loaded, err := strategy.Load(file)
	assert.NoError(t, err)
	assert.Equal(t, []byte("on disk"), loaded)
}

func TestLoadWithoutContent(t *testing.T) {
	strategy := NewDatabaseStrategy()
	_, err := strategy.Load(&model.DocumentFile{DocumentID: "doc-4"})
	assert.ErrorIs(t, err, ErrNoContent)
}
