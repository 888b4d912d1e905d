package pipeline

import (
	"encoding/json"
	"os"

	"github.com/OMERKURIEL/etl-assignment/internal/model"
	"github.com/OMERKURIEL/etl-assignment/pkg/utils"
)

// BuildMergedRecord assembles the single output document for one file-set.
// The record carries no timestamps so reruns over identical inputs produce
// byte-identical files.
func BuildMergedRecord(fileSetID string, record model.MetadataRecord, stats []model.SequenceStats, issues []model.ValidationIssue, status model.Status) *model.MergedRecord {
	return &model.MergedRecord{
		FileSetID: fileSetID,
		Status:    status,
		Metadata:  record,
		Sequences: stats,
		Issues:    issues,
	}
}

// Load writes a merged record to <outputDir>/<fileSetID>.json, creating the
// directory if needed, and returns the written path. A partially written
// file on error is left in place; the next successful run overwrites it.
func Load(log *model.RunLog, merged *model.MergedRecord, outputDir string) (string, error) {
	om := utils.NewOutputManager(outputDir)
	if err := om.EnsureDir(); err != nil {
		return "", &model.LoadError{Code: model.LoadDirCreateFailed, Path: outputDir, Err: err}
	}

	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return "", &model.LoadError{Code: model.LoadWriteFailed, Path: outputDir, Err: err}
	}
	raw = append(raw, '\n')

	path := om.RecordPath(merged.FileSetID)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", &model.LoadError{Code: model.LoadWriteFailed, Path: path, Err: err}
	}

	log.Appendf("file-set %s: %s (%d issues) -> %s", merged.FileSetID, merged.Status, len(merged.Issues), path)
	return path, nil
}
