// Package store persists run history in a local sqlite database. The store
// is optional: the pipeline runs fine without it, history is only recorded
// when a database path is configured.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/OMERKURIEL/etl-assignment/internal/model"
)

var db *sql.DB

// InitDB opens (or creates) the history database and its tables.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		inputs TEXT,
		output_dir TEXT
	);
	`
	resultTable := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		file_set_id TEXT,
		input_path TEXT,
		status TEXT,
		issue_count INTEGER,
		output_path TEXT
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS run_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		seq INTEGER,
		line TEXT
	);
	`

	if _, err := db.Exec(runTable); err != nil {
		return err
	}
	if _, err := db.Exec(resultTable); err != nil {
		return err
	}
	if _, err := db.Exec(logTable); err != nil {
		return err
	}

	return nil
}

// Close releases the database handle.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun records the start of a run.
func SaveRun(runID string, inputs []string, outputDir string) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, started_at, inputs, output_dir) VALUES (?, ?, ?, ?)`,
		runID, now, inputsJSON, outputDir)
	return err
}

// FinishRun stamps the run's completion time.
func FinishRun(runID string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET finished_at = ? WHERE id = ?`, now, runID)
	return err
}

// SaveResult records one file-set outcome for a run.
func SaveResult(runID string, r model.PipelineResult) error {
	_, err := db.Exec(
		`INSERT INTO results (run_id, file_set_id, input_path, status, issue_count, output_path) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, r.FileSetID, r.InputPath, string(r.Status), len(r.Issues), r.OutputPath)
	return err
}

// SaveRunLog stores the run log lines in order.
func SaveRunLog(runID string, lines []string) error {
	for i, line := range lines {
		if _, err := db.Exec(`INSERT INTO run_log (run_id, seq, line) VALUES (?, ?, ?)`,
			runID, i, line); err != nil {
			return err
		}
	}
	return nil
}

// GetRunResults returns the recorded file-set outcomes of a run in
// insertion order.
func GetRunResults(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(
		`SELECT file_set_id, input_path, status, issue_count, output_path FROM results WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var fileSetID, inputPath, status, outputPath string
		var issueCount int
		if err := rows.Scan(&fileSetID, &inputPath, &status, &issueCount, &outputPath); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"fileSetId":  fileSetID,
			"inputPath":  inputPath,
			"status":     status,
			"issueCount": issueCount,
			"outputPath": outputPath,
		})
	}
	return out, rows.Err()
}
