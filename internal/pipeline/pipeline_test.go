package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OMERKURIEL/etl-assignment/internal/config"
	"github.com/OMERKURIEL/etl-assignment/internal/model"
)

const testUUID = "b1e7a9d2-3c4f-4a5b-8c6d-7e8f9a0b1c2d"

// validDoc returns a metadata document that passes validation unchanged.
func validDoc(seqFiles ...interface{}) map[string]interface{} {
	if len(seqFiles) == 0 {
		seqFiles = []interface{}{"sample_dna.txt"}
	}
	return map[string]interface{}{
		"participant_id":  testUUID,
		"sample_type":     "blood",
		"requested_by":    "Dr. Example",
		"collection_date": "2020-03-01",
		"date_requested":  "2020-02-20",
		"date_completed":  "2020-03-10",
		"coverage_depth":  float64(30),
		"sequence_files":  seqFiles,
		"individual_metadata": map[string]interface{}{
			"date_of_birth": "1970-05-04",
		},
	}
}

// writeFileSet creates <stem>_dna.json and <stem>_dna.txt in dir and returns
// the metadata path.
func writeFileSet(t *testing.T, dir, stem, seqContent string) string {
	t.Helper()
	seqName := stem + "_dna.txt"
	if err := os.WriteFile(filepath.Join(dir, seqName), []byte(seqContent), 0644); err != nil {
		t.Fatal(err)
	}
	return writeMetadata(t, dir, stem+"_dna.json", validDoc(seqName))
}

func writeMetadata(t *testing.T, dir, name string, doc map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	meta := writeFileSet(t, dir, "sample", "ACGTACGT\nACGT\n")
	outDir := filepath.Join(dir, "out")

	results, runLog, err := Run([]string{meta}, outDir, config.Default())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want completed (issues: %v)", r.Status, r.Issues)
	}
	if r.State != model.StateCompleted {
		t.Errorf("State = %q, want completed", r.State)
	}
	if r.FileSetID != "sample" {
		t.Errorf("FileSetID = %q, want sample", r.FileSetID)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "sample.json"))
	if err != nil {
		t.Fatalf("merged record not written: %v", err)
	}
	var merged model.MergedRecord
	if err := json.Unmarshal(raw, &merged); err != nil {
		t.Fatalf("merged record not valid JSON: %v", err)
	}
	if merged.Status != model.StatusCompleted {
		t.Errorf("merged Status = %q, want completed", merged.Status)
	}
	if len(merged.Sequences) != 1 || merged.Sequences[0].SequenceID != "sample" {
		t.Errorf("merged Sequences = %+v, want one entry with id sample", merged.Sequences)
	}
	if _, ok := merged.Metadata["participant_id"]; !ok {
		t.Error("merged Metadata lost participant_id")
	}

	if len(runLog.Lines()) < 3 {
		t.Errorf("run log has %d lines, want header + file-set + footer", len(runLog.Lines()))
	}
}

func TestRunBatchIsolation(t *testing.T) {
	dir := t.TempDir()
	first := writeFileSet(t, dir, "first", "ACGT\nAC\n")
	broken := filepath.Join(dir, "broken_dna.json") // never created
	third := writeFileSet(t, dir, "third", "GGCC\nGC\n")
	outDir := filepath.Join(dir, "out")

	results, _, err := Run([]string{first, broken, third}, outDir, config.Default())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []model.Status{model.StatusCompleted, model.StatusFailed, model.StatusCompleted}
	for i, r := range results {
		if r.Status != want[i] {
			t.Errorf("results[%d].Status = %q, want %q (issues: %v)", i, r.Status, want[i], r.Issues)
		}
	}
	for _, name := range []string{"first.json", "third.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "broken.json")); err == nil {
		t.Error("failed file-set must not produce an output file")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	meta := writeFileSet(t, dir, "sample", "ACGTACGT\nACGT\n")
	outDir := filepath.Join(dir, "out")
	policy := config.Default()

	if _, _, err := Run([]string{meta}, outDir, policy); err != nil {
		t.Fatal(err)
	}
	firstRun, err := os.ReadFile(filepath.Join(outDir, "sample.json"))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Run([]string{meta}, outDir, policy); err != nil {
		t.Fatal(err)
	}
	secondRun, err := os.ReadFile(filepath.Join(outDir, "sample.json"))
	if err != nil {
		t.Fatal(err)
	}

	if string(firstRun) != string(secondRun) {
		t.Error("reruns over identical inputs must produce byte-identical records")
	}
}

func TestRunPartialOnInvalidAlphabet(t *testing.T) {
	dir := t.TempDir()
	meta := writeFileSet(t, dir, "sample", "ACGX\nACGT\n")
	outDir := filepath.Join(dir, "out")

	results, _, err := Run([]string{meta}, outDir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.Status != model.StatusPartial {
		t.Fatalf("Status = %q, want partial (issues: %v)", r.Status, r.Issues)
	}
	found := false
	for _, issue := range r.Issues {
		if issue.Code == model.IssueOutOfRange && issue.SequenceID == "sample" {
			found = true
		}
	}
	if !found {
		t.Errorf("no out_of_range issue for the sequence, got %v", r.Issues)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sample.json")); err != nil {
		t.Errorf("partial file-set still writes its record: %v", err)
	}
}

func TestRunFailedValidationSkipsLoad(t *testing.T) {
	dir := t.TempDir()
	seqName := "sample_dna.txt"
	if err := os.WriteFile(filepath.Join(dir, seqName), []byte("ACGT\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc := validDoc(seqName)
	delete(doc, "participant_id")
	meta := writeMetadata(t, dir, "sample_dna.json", doc)
	outDir := filepath.Join(dir, "out")

	results, _, err := Run([]string{meta}, outDir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.Status != model.StatusFailed || r.State != model.StateFailed {
		t.Errorf("got status %q state %q, want failed/failed", r.Status, r.State)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sample.json")); err == nil {
		t.Error("failed file-set must not produce an output file")
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	if _, _, err := Run(nil, t.TempDir(), config.Default()); err == nil {
		t.Error("Run(nil inputs) = nil error, want failure")
	}
	if _, _, err := Run([]string{"x.json"}, "", config.Default()); err == nil {
		t.Error("Run with empty output dir = nil error, want failure")
	}
}

func TestStatusFromIssues(t *testing.T) {
	policy := config.Default()
	cases := []struct {
		name   string
		issues []model.ValidationIssue
		want   model.Status
	}{
		{"no issues", nil, model.StatusCompleted},
		{"out of range", []model.ValidationIssue{{Code: model.IssueOutOfRange}}, model.StatusPartial},
		{"missing field", []model.ValidationIssue{{Code: model.IssueMissingField}}, model.StatusFailed},
		{"plain mismatch", []model.ValidationIssue{{Code: model.IssueTypeMismatch}}, model.StatusFailed},
		{"coerced mismatch", []model.ValidationIssue{{Code: model.IssueTypeMismatch, Coerced: true}}, model.StatusPartial},
		{"unknown code", []model.ValidationIssue{{Code: model.IssuePipelineError}}, model.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFromIssues(tc.issues, policy); got != tc.want {
				t.Errorf("statusFromIssues() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIssueFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.IssueCode
	}{
		{"input error", &model.InputError{Code: model.InputNotFound, Path: "x"}, model.IssueCode("not_found")},
		{"sequence error", &model.SequenceError{Code: model.SequenceEmpty, Path: "x"}, model.IssueCode("empty")},
		{"load error", &model.LoadError{Code: model.LoadWriteFailed, Path: "x"}, model.IssueCode("write_failed")},
		{"plain error", errors.New("boom"), model.IssuePipelineError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := issueFromError(tc.err); got.Code != tc.want {
				t.Errorf("issueFromError().Code = %q, want %q", got.Code, tc.want)
			}
		})
	}
}
