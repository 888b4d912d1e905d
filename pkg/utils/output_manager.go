package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputManager handles output file organization and path management for
// merged records.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager rooted at baseOutputDir.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// EnsureDir creates the base output directory (and parents) if absent.
func (om *OutputManager) EnsureDir() error {
	if err := os.MkdirAll(om.BaseOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// RecordPath returns the deterministic path of a file-set's merged record.
// The ID is cleaned of any path separators first.
func (om *OutputManager) RecordPath(fileSetID string) string {
	clean := filepath.Base(fileSetID)
	return filepath.Join(om.BaseOutputDir, clean+".json")
}
