package services_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reporter/src/models"
	"reporter/src/services"
)

func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractReportFileMatchingFormat(t *testing.T) {
	svc := services.NewArchiveService(t.TempDir())
	archive := zipArchive(t, map[string]string{
		"nested/dir/report.csv": "a,b\n1,2\n",
		"readme.txt":            "ignore me",
	})

	data, fallback, err := svc.ExtractReportFile(context.Background(), archive, models.FormatCSV)

	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestExtractReportFileFallback(t *testing.T) {
	svc := services.NewArchiveService(t.TempDir())
	archive := zipArchive(t, map[string]string{
		"report.json": `{"rows":[]}`,
	})

	data, fallback, err := svc.ExtractReportFile(context.Background(), archive, models.FormatCSV)

	require.NoError(t, err)
	assert.True(t, fallback, "extractor should report that the fallback entry was used")
	assert.JSONEq(t, `{"rows":[]}`, string(data))
}

func TestExtractReportFileNoCandidate(t *testing.T) {
	svc := services.NewArchiveService(t.TempDir())
	archive := zipArchive(t, map[string]string{
		"readme.txt": "nothing useful",
	})

	_, _, err := svc.ExtractReportFile(context.Background(), archive, models.FormatJSON)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "json")
}

func TestExtractReportFileCleansUpTempArtifacts(t *testing.T) {
	tempDir := t.TempDir()
	svc := services.NewArchiveService(tempDir)

	archive := zipArchive(t, map[string]string{"report.csv": "x\n"})
	_, _, err := svc.ExtractReportFile(context.Background(), archive, models.FormatCSV)
	require.NoError(t, err)

	// Failure path must clean up as well.
	_, _, err = svc.ExtractReportFile(context.Background(), []byte("not a zip"), models.FormatCSV)
	require.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary artifacts must be removed on every exit path")
}
