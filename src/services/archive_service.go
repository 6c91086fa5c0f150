package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"reporter/src/models"
	"reporter/src/utils"
)

// ArchiveService materializes downloaded export archives to a private
// temporary location and picks out the single data file of interest.
type ArchiveService struct {
	// TempDir overrides the system temp directory when set.
	TempDir string
}

func NewArchiveService(tempDir string) *ArchiveService {
	return &ArchiveService{TempDir: tempDir}
}

// ExtractReportFile extracts the archive and returns the bytes of the
// entry matching the expected format. When no entry matches, the first
// csv/json entry is used instead and the second return is true. All
// temporary artifacts are removed on every exit path.
func (s *ArchiveService) ExtractReportFile(ctx context.Context, archive []byte, format models.ReportFormat) ([]byte, bool, error) {
	workDir, err := os.MkdirTemp(s.TempDir, "export-"+uuid.NewString())
	if err != nil {
		return nil, false, fmt.Errorf("creating extraction directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	archivePath := filepath.Join(workDir, "export.zip")
	if err := os.WriteFile(archivePath, archive, 0o600); err != nil {
		return nil, false, fmt.Errorf("writing archive: %w", err)
	}

	extracted, err := extractFlattened(archivePath, filepath.Join(workDir, "extracted"))
	if err != nil {
		return nil, false, fmt.Errorf("extracting archive: %w", err)
	}

	wanted := "." + format.Extension()
	for _, path := range extracted {
		if strings.EqualFold(filepath.Ext(path), wanted) {
			data, err := os.ReadFile(path)
			return data, false, err
		}
	}

	// No exact match; fall back to any recognizable report payload.
	for _, path := range extracted {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".csv" || ext == ".json" {
			utils.LoggerFromContext(ctx).WithFields(map[string]interface{}{
				"expected": string(format),
				"found":    filepath.Base(path),
			}).Warn("expected report format missing from archive, using fallback entry")
			data, err := os.ReadFile(path)
			return data, true, err
		}
	}

	return nil, false, fmt.Errorf("no %s file found in export archive", format)
}

// extractFlattened unpacks every regular entry of the zip into destDir,
// dropping any internal directory structure.
func extractFlattened(archivePath, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var paths []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(destDir, filepath.Base(entry.Name))

		src, err := entry.Open()
		if err != nil {
			return nil, err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return nil, err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, err
		}
		paths = append(paths, target)
	}
	return paths, nil
}
