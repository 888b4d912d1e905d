package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/OMERKURIEL/etl-assignment/internal/model"
)

// ProcessSequence reads one sequence file and computes its statistics. Each
// non-empty line is one block. Content outside the accepted alphabet is not
// an error: it is recorded per symbol and flips ValidAlphabet off. Only an
// unreadable or empty file fails the stage.
func ProcessSequence(path string, alphabet string) (model.SequenceStats, error) {
	if alphabet == "" {
		alphabet = "ACGT"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SequenceStats{}, &model.SequenceError{Code: model.SequenceUnreadable, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return model.SequenceStats{}, &model.SequenceError{Code: model.SequenceUnreadable, Path: path}
	}
	if len(data) == 0 {
		return model.SequenceStats{}, &model.SequenceError{Code: model.SequenceEmpty, Path: path}
	}

	var blocks []string
	var blockLines []int // original 1-based line number per block
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, strings.ToUpper(trimmed))
		blockLines = append(blockLines, i+1)
	}
	if len(blocks) == 0 {
		return model.SequenceStats{}, &model.SequenceError{Code: model.SequenceEmpty, Path: path}
	}

	stats := model.SequenceStats{
		SequenceID:      sequenceID(path),
		CharacterCounts: map[string]int{},
	}

	allowed := map[rune]bool{}
	for _, r := range strings.ToUpper(alphabet) {
		allowed[r] = true
	}

	codonTotals := map[string]int{}
	for bi, block := range blocks {
		for ci, r := range block {
			stats.Length++
			stats.CharacterCounts[string(r)]++
			if !allowed[r] {
				stats.InvalidSymbols = append(stats.InvalidSymbols, model.InvalidSymbol{
					Symbol: string(r),
					Line:   blockLines[bi],
					Column: ci + 1,
				})
			}
		}

		bs := model.BlockStats{GCContent: gcContent(block), Codons: map[string]int{}}
		for i := 0; i+3 <= len(block); i += 3 {
			codon := block[i : i+3]
			bs.Codons[codon]++
			codonTotals[codon]++
		}
		stats.Blocks = append(stats.Blocks, bs)
	}
	stats.ValidAlphabet = len(stats.InvalidSymbols) == 0
	stats.GCContent = gcContent(strings.Join(blocks, ""))
	stats.MostCommonCodon = mostCommonCodon(codonTotals)

	if len(blocks) >= 2 {
		stats.LCS = commonSubsequence(blocks)
	}
	return stats, nil
}

// sequenceID derives the sequence identifier from the file name: the base
// name without extension, with a trailing "_dna" marker dropped.
func sequenceID(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(stem, "_dna")
}

// gcContent returns the G+C percentage of a block, rounded to two decimals.
func gcContent(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	gc := strings.Count(s, "G") + strings.Count(s, "C")
	return round2(100 * float64(gc) / float64(len(s)))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// mostCommonCodon picks the codon with the highest total count. Ties break
// to the lexicographically smallest codon so reruns stay deterministic.
func mostCommonCodon(totals map[string]int) string {
	if len(totals) == 0 {
		return ""
	}
	codons := make([]string, 0, len(totals))
	for c := range totals {
		codons = append(codons, c)
	}
	sort.Strings(codons)

	best := codons[0]
	for _, c := range codons[1:] {
		if totals[c] > totals[best] {
			best = c
		}
	}
	return best
}

// commonSubsequence folds the pairwise longest common subsequence over all
// blocks, then reports which blocks (1-based) contain the result.
func commonSubsequence(blocks []string) *model.SubsequenceResult {
	lcs := blocks[0]
	for _, block := range blocks[1:] {
		lcs = lcsPair(lcs, block)
		if lcs == "" {
			break
		}
	}

	var indices []int
	for i, block := range blocks {
		if isSubsequence(lcs, block) {
			indices = append(indices, i+1)
		}
	}
	return &model.SubsequenceResult{Value: lcs, Blocks: indices, Length: len(lcs)}
}

// lcsPair is the classic dynamic-programming longest common subsequence of
// two strings, with reconstruction.
func lcsPair(a, b string) string {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	out := make([]byte, 0, dp[n][m])
	for i, j := n, m; i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			out = append(out, a[i-1])
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return string(out)
}

func isSubsequence(sub, s string) bool {
	if sub == "" {
		return true
	}
	i := 0
	for j := 0; j < len(s) && i < len(sub); j++ {
		if s[j] == sub[i] {
			i++
		}
	}
	return i == len(sub)
}
