package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OMERKURIEL/etl-assignment/internal/model"
)

// Locate resolves one metadata path into a file-set descriptor. It verifies
// the metadata file exists, has a .json extension and is non-empty, then
// resolves every sequence file it declares relative to the metadata's
// directory. All missing sequence files are reported in a single error.
func Locate(metadataPath string) (model.FileSetDescriptor, error) {
	var desc model.FileSetDescriptor

	info, err := os.Stat(metadataPath)
	if err != nil || info.IsDir() {
		return desc, &model.InputError{Code: model.InputNotFound, Path: metadataPath, Err: err}
	}
	if filepath.Ext(metadataPath) != ".json" {
		return desc, &model.InputError{Code: model.InputBadExtension, Path: metadataPath}
	}
	if info.Size() == 0 {
		return desc, &model.InputError{Code: model.InputEmpty, Path: metadataPath}
	}

	raw, err := os.ReadFile(metadataPath)
	if err != nil {
		return desc, &model.InputError{Code: model.InputNotFound, Path: metadataPath, Err: err}
	}

	// Only the file list is decoded here. Full schema validation happens in
	// the validate stage so one undecodable field does not hide the rest.
	var declared struct {
		SequenceFiles []string `json:"sequence_files"`
	}
	if err := json.Unmarshal(raw, &declared); err != nil {
		return desc, fmt.Errorf("failed to decode metadata file %s: %w", metadataPath, err)
	}

	dir := filepath.Dir(metadataPath)
	var missing []string
	paths := make([]string, 0, len(declared.SequenceFiles))
	for _, name := range declared.SequenceFiles {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err != nil || fi.IsDir() {
			missing = append(missing, name)
			continue
		}
		paths = append(paths, p)
	}
	if len(missing) > 0 {
		return desc, &model.InputError{
			Code:    model.InputMissingSequence,
			Path:    metadataPath,
			Missing: missing,
		}
	}

	desc.MetadataPath = metadataPath
	desc.SequencePaths = paths
	return desc, nil
}
