package model

// MetadataRecord is a schema-agnostic map holding the normalized metadata
// fields of one file-set. Unknown fields are preserved as-is.
type MetadataRecord map[string]interface{}

// FileSetDescriptor is the validated result of locating one file-set: the
// metadata file plus every sequence file it references, in declared order.
type FileSetDescriptor struct {
	MetadataPath  string
	SequencePaths []string
}

// Status is the outcome of processing one file-set.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// State tracks how far a file-set got through the pipeline stages.
type State string

const (
	StateLocated   State = "located"
	StateValidated State = "validated"
	StateProcessed State = "processed"
	StateLoaded    State = "loaded"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// InvalidSymbol records one character found outside the accepted alphabet.
type InvalidSymbol struct {
	Symbol string `json:"symbol"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// BlockStats holds the per-block (one line = one block) statistics carried
// over from the original txt processing: GC content and codon frequencies.
type BlockStats struct {
	GCContent float64        `json:"gc_content"`
	Codons    map[string]int `json:"codons,omitempty"`
}

// SubsequenceResult is the longest common subsequence found across the
// blocks of one sequence file. Blocks lists 1-based indices of the blocks
// that contain the subsequence.
type SubsequenceResult struct {
	Value  string `json:"value"`
	Blocks []int  `json:"blocks"`
	Length int    `json:"length"`
}

// SequenceStats is the summary computed for one sequence file.
// Invariant: Length equals the sum of CharacterCounts.
type SequenceStats struct {
	SequenceID      string             `json:"sequence_id"`
	Length          int                `json:"length"`
	CharacterCounts map[string]int     `json:"character_counts"`
	ValidAlphabet   bool               `json:"valid_alphabet"`
	InvalidSymbols  []InvalidSymbol    `json:"invalid_symbols,omitempty"`
	GCContent       float64            `json:"gc_content"`
	MostCommonCodon string             `json:"most_common_codon,omitempty"`
	Blocks          []BlockStats       `json:"blocks,omitempty"`
	LCS             *SubsequenceResult `json:"lcs,omitempty"`
}

// MergedRecord is the single output document written per file-set. It is
// deterministic: reruns over the same inputs produce byte-identical files.
type MergedRecord struct {
	FileSetID string            `json:"file_set_id"`
	Status    Status            `json:"status"`
	Metadata  MetadataRecord    `json:"metadata"`
	Sequences []SequenceStats   `json:"sequences"`
	Issues    []ValidationIssue `json:"issues,omitempty"`
}

// PipelineResult is the per-file-set outcome returned by a run. Created when
// processing starts, populated by each stage, never mutated after the run.
type PipelineResult struct {
	FileSetID  string            `json:"file_set_id"`
	InputPath  string            `json:"input_path"`
	State      State             `json:"state"`
	Status     Status            `json:"status"`
	OutputPath string            `json:"output_path,omitempty"`
	Merged     *MergedRecord     `json:"merged_record,omitempty"`
	Issues     []ValidationIssue `json:"issues,omitempty"`
}
