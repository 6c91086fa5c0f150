package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reporter/src/models"
	"reporter/src/utils"
)

const indexFileName = "index.json"

// ErrInvalidFileName rejects definition file names that would escape
// the service-owned reports directory.
var ErrInvalidFileName = errors.New("invalid definition file name")

type ReportRepositoryI interface {
	LoadAll(ctx context.Context) ([]*models.ScheduledReport, error)
	Load(ctx context.Context, fileName string) (*models.ScheduledReport, error)
	Save(ctx context.Context, report *models.ScheduledReport) error
	SaveDefinition(ctx context.Context, data []byte, fileName string) error
	DeleteDefinition(ctx context.Context, fileName string) error
	LoadIndex(ctx context.Context) (*models.ReportIndex, error)
	SaveIndex(ctx context.Context, data []byte) error
}

// ReportRepository stores one JSON definition file per report plus a
// separate index file, all under a single service-owned directory.
type ReportRepository struct {
	Dir string
}

func NewReportRepository(dir string) (*ReportRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}
	return &ReportRepository{Dir: dir}, nil
}

func validFileName(fileName string) bool {
	if fileName == "" || fileName == indexFileName {
		return false
	}
	if filepath.Base(fileName) != fileName {
		return false
	}
	return strings.HasSuffix(fileName, ".json")
}

// LoadAll reads every definition file in the directory. A malformed
// file is logged and skipped so one bad definition cannot block the
// sweep; an unreadable directory is returned as an error.
func (r *ReportRepository) LoadAll(ctx context.Context) ([]*models.ScheduledReport, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading reports directory: %w", err)
	}

	logger := utils.LoggerFromContext(ctx)
	var reports []*models.ScheduledReport
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !validFileName(name) {
			continue
		}
		report, err := r.Load(ctx, name)
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("skipping unreadable report definition")
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *ReportRepository) Load(_ context.Context, fileName string) (*models.ScheduledReport, error) {
	if !validFileName(fileName) {
		return nil, ErrInvalidFileName
	}
	data, err := os.ReadFile(filepath.Join(r.Dir, fileName))
	if err != nil {
		return nil, err
	}
	var report models.ScheduledReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", fileName, err)
	}
	if report.ID == "" {
		return nil, fmt.Errorf("definition %s has no id", fileName)
	}
	return &report, nil
}

// Save persists an updated report definition under its deterministic
// file name. The write goes through a temp file and rename so a crash
// mid-write never leaves a truncated definition behind.
func (r *ReportRepository) Save(_ context.Context, report *models.ScheduledReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return r.writeFile(report.FileName(), data)
}

// SaveDefinition stores raw definition bytes handed over by the front
// end, after checking they decode as a report definition. The file
// name must be the one derived from the report ID: execution persists
// updated state under that name, so accepting any other name would
// leave a second copy of the report whose nextRun never advances.
func (r *ReportRepository) SaveDefinition(_ context.Context, data []byte, fileName string) error {
	if !validFileName(fileName) {
		return ErrInvalidFileName
	}
	var report models.ScheduledReport
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("definition does not decode: %w", err)
	}
	if report.ID == "" {
		return errors.New("definition has no id")
	}
	if fileName != report.FileName() {
		return fmt.Errorf("%w: definition with id %q must be stored as %s", ErrInvalidFileName, report.ID, report.FileName())
	}
	return r.writeFile(fileName, data)
}

// DeleteDefinition removes the definition file and its index entry.
func (r *ReportRepository) DeleteDefinition(ctx context.Context, fileName string) error {
	if !validFileName(fileName) {
		return ErrInvalidFileName
	}
	if err := os.Remove(filepath.Join(r.Dir, fileName)); err != nil && !os.IsNotExist(err) {
		return err
	}

	index, err := r.LoadIndex(ctx)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).WithField("file", fileName).
			Warn("definition removed but index could not be read; stale index entry left behind")
		return nil
	}
	if index == nil {
		return nil
	}
	kept := index.Reports[:0]
	for _, entry := range index.Reports {
		if entry.FileName != fileName {
			kept = append(kept, entry)
		}
	}
	index.Reports = kept
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return r.writeFile(indexFileName, data)
}

// LoadIndex returns the index, or nil when none has been written yet.
func (r *ReportRepository) LoadIndex(_ context.Context) (*models.ReportIndex, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir, indexFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var index models.ReportIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	return &index, nil
}

// SaveIndex stores raw index bytes handed over by the front end.
func (r *ReportRepository) SaveIndex(_ context.Context, data []byte) error {
	var index models.ReportIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("index does not decode: %w", err)
	}
	return r.writeFile(indexFileName, data)
}

func (r *ReportRepository) writeFile(fileName string, data []byte) error {
	target := filepath.Join(r.Dir, fileName)
	tmp, err := os.CreateTemp(r.Dir, fileName+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}
