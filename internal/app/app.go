// Package app wires the command line to the pipeline. It owns argument
// parsing, exit codes and the optional run-history store, keeping main
// down to a single call.
package app

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/OMERKURIEL/etl-assignment/internal/config"
	"github.com/OMERKURIEL/etl-assignment/internal/model"
	"github.com/OMERKURIEL/etl-assignment/internal/pipeline"
	"github.com/OMERKURIEL/etl-assignment/internal/store"
)

const usage = `Usage: pipeline run [flags] <metadata.json> [<metadata.json> ...]

Processes one file-set per metadata file and writes a merged record for
each into the output directory.

Flags:
  -out string         output directory (default: <first metadata dir>/out)
  -config string      policy file (YAML); defaults apply when omitted
  -history-db string  sqlite file recording run history (optional)

Exit codes:
  0  every file-set completed
  1  at least one file-set failed or was partial
  2  usage or configuration error
`

// Run executes the CLI and returns the process exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch argv[0] {
	case "run":
		return runCmd(argv[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", argv[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
}

func runCmd(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("out", "", "output directory")
	configPath := fs.String("config", "", "policy file (YAML)")
	historyDB := fs.String("history-db", "", "sqlite file recording run history")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "run: at least one metadata file is required")
		fmt.Fprint(stderr, usage)
		return 2
	}

	policy := config.Default()
	if *configPath != "" {
		var err error
		policy, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "run: %v\n", err)
			return 2
		}
	}

	if *outDir == "" {
		*outDir = filepath.Join(filepath.Dir(inputs[0]), "out")
	}

	fmt.Fprintf(stdout, "🚀 Starting pipeline run: %d file-set(s)\n", len(inputs))

	results, runLog, err := pipeline.Run(inputs, *outDir, policy)
	if err != nil {
		fmt.Fprintf(stderr, "run: %v\n", err)
		return 2
	}

	fmt.Fprintln(stdout, runLog.String())

	if *historyDB != "" {
		recordHistory(*historyDB, inputs, *outDir, results, runLog, stderr)
	}

	allCompleted := true
	for _, r := range results {
		if r.Status != model.StatusCompleted {
			allCompleted = false
		}
	}
	if !allCompleted {
		return 1
	}
	fmt.Fprintln(stdout, "🏁 All file-sets completed")
	return 0
}

// recordHistory persists the run to the sqlite store. History is best
// effort: failures are warned about but never change the exit code.
func recordHistory(dbPath string, inputs []string, outDir string, results []model.PipelineResult, runLog *model.RunLog, stderr io.Writer) {
	warn := func(err error) {
		if err != nil {
			fmt.Fprintf(stderr, "warning: history not recorded: %v\n", err)
		}
	}

	if err := store.InitDB(dbPath); err != nil {
		warn(err)
		return
	}
	defer store.Close()

	runID := uuid.New().String()
	warn(store.SaveRun(runID, inputs, outDir))
	for _, r := range results {
		warn(store.SaveResult(runID, r))
	}
	warn(store.SaveRunLog(runID, runLog.Lines()))
	warn(store.FinishRun(runID))
}
