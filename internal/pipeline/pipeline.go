package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OMERKURIEL/etl-assignment/internal/config"
	"github.com/OMERKURIEL/etl-assignment/internal/model"
)

// ------------------- Pipeline Runner -------------------

// Run processes every metadata path in order and writes one merged record
// per file-set into outputDir. File-sets are isolated: a failure in one
// never stops the batch, it only marks that file-set failed. The returned
// results preserve input order; the run log accumulates one summary line
// per file-set plus a header and footer.
func Run(inputs []string, outputDir string, policy config.Policy) ([]model.PipelineResult, *model.RunLog, error) {
	if len(inputs) == 0 {
		return nil, nil, fmt.Errorf("no metadata files given")
	}
	if outputDir == "" {
		return nil, nil, fmt.Errorf("output directory must not be empty")
	}

	log := &model.RunLog{}
	log.Appendf("run started: %d file-set(s), output %s", len(inputs), outputDir)

	results := make([]model.PipelineResult, 0, len(inputs))
	completed := 0
	for _, input := range inputs {
		res := runOne(input, outputDir, policy, log)
		if res.Status == model.StatusCompleted {
			completed++
		}
		results = append(results, res)
	}

	log.Appendf("run finished: %d/%d completed", completed, len(results))
	return results, log, nil
}

// runOne drives a single file-set through locate, validate, process and
// load. Stage errors are converted to issues and fail the file-set; the
// caller continues with the rest of the batch.
func runOne(input string, outputDir string, policy config.Policy, log *model.RunLog) model.PipelineResult {
	res := model.PipelineResult{
		FileSetID: fileSetID(input),
		InputPath: input,
	}

	desc, err := Locate(input)
	if err != nil {
		return failResult(res, err, log)
	}
	res.State = model.StateLocated

	raw, err := os.ReadFile(desc.MetadataPath)
	if err != nil {
		return failResult(res, &model.InputError{Code: model.InputNotFound, Path: desc.MetadataPath, Err: err}, log)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return failResult(res, fmt.Errorf("failed to decode metadata file %s: %w", desc.MetadataPath, err), log)
	}

	record, issues := ValidateMetadata(doc, policy)
	res.State = model.StateValidated
	res.Issues = issues

	if statusFromIssues(issues, policy) == model.StatusFailed {
		res.State = model.StateFailed
		res.Status = model.StatusFailed
		log.Appendf("file-set %s: failed validation (%d issues)", res.FileSetID, len(issues))
		return res
	}

	var stats []model.SequenceStats
	for _, path := range desc.SequencePaths {
		st, err := ProcessSequence(path, policy.Alphabet)
		if err != nil {
			return failResult(res, err, log)
		}
		if !st.ValidAlphabet {
			res.Issues = append(res.Issues, model.ValidationIssue{
				SequenceID: st.SequenceID,
				Code:       model.IssueOutOfRange,
				Message: fmt.Sprintf("sequence %s contains %d symbol(s) outside the alphabet %s",
					st.SequenceID, len(st.InvalidSymbols), policy.Alphabet),
			})
		}
		stats = append(stats, st)
	}
	res.State = model.StateProcessed

	status := statusFromIssues(res.Issues, policy)
	merged := BuildMergedRecord(res.FileSetID, record, stats, res.Issues, status)
	path, err := Load(log, merged, outputDir)
	if err != nil {
		return failResult(res, err, log)
	}
	res.State = model.StateLoaded
	res.OutputPath = path
	res.Merged = merged

	res.State = model.StateCompleted
	res.Status = status
	return res
}

// failResult marks a file-set failed, folding the stage error into its
// issue list so the failure is visible alongside validation issues.
func failResult(res model.PipelineResult, err error, log *model.RunLog) model.PipelineResult {
	res.Issues = append(res.Issues, issueFromError(err))
	res.State = model.StateFailed
	res.Status = model.StatusFailed
	log.Appendf("file-set %s: failed: %v", res.FileSetID, err)
	return res
}

// issueFromError maps a stage error to a structured issue, reusing the
// error taxonomy code when one is available.
func issueFromError(err error) model.ValidationIssue {
	var inputErr *model.InputError
	if errors.As(err, &inputErr) {
		return model.ValidationIssue{Code: model.IssueCode(inputErr.Code), Message: inputErr.Error()}
	}
	var seqErr *model.SequenceError
	if errors.As(err, &seqErr) {
		return model.ValidationIssue{Code: model.IssueCode(seqErr.Code), Message: seqErr.Error()}
	}
	var loadErr *model.LoadError
	if errors.As(err, &loadErr) {
		return model.ValidationIssue{Code: model.IssueCode(loadErr.Code), Message: loadErr.Error()}
	}
	return model.ValidationIssue{Code: model.IssuePipelineError, Message: err.Error()}
}

// statusFromIssues folds the issue list into a file-set status using the
// configured severities. A coerced type mismatch only degrades to partial:
// the value was recovered, the record is still usable.
func statusFromIssues(issues []model.ValidationIssue, policy config.Policy) model.Status {
	status := model.StatusCompleted
	for _, issue := range issues {
		sev := policy.SeverityFor(string(issue.Code))
		if issue.Coerced && issue.Code == model.IssueTypeMismatch {
			sev = config.SeverityPartial
		}
		if sev == config.SeverityFailed {
			return model.StatusFailed
		}
		status = model.StatusPartial
	}
	return status
}

// fileSetID derives the file-set identifier from the metadata file name:
// the base name without extension, with a trailing "_dna" marker dropped.
func fileSetID(metadataPath string) string {
	base := filepath.Base(metadataPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(stem, "_dna")
}
