package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"

	"github.com/pdfmill/pdfmill"
	"github.com/pdfmill/pdfmill/batch"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS conversions (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    artifact    TEXT,
    format      TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT,
    warnings    INTEGER NOT NULL DEFAULT 0,
    finished_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS conversions_finished_at ON conversions(finished_at);
`

// journal records finished conversions in a local SQLite database.
type journal struct {
	db *sql.DB
}

// openJournal opens or creates the journal at path.
func openJournal(path string) (*journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &journal{db: db}, nil
}

func (j *journal) Close() error { return j.db.Close() }

// add records one finished job.
func (j *journal) add(ctx context.Context, job *batch.Job) error {
	var errText string
	if err := job.Err(); err != nil {
		errText = err.Error()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions (id, source, artifact, format, status, error, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Source, job.Output, job.Format.String(), job.Status().String(),
		errText, len(job.Advisories()),
	)
	return err
}

// entry is one journal row.
type entry struct {
	Source     string
	Artifact   string
	Format     string
	Status     string
	Error      string
	Warnings   int
	FinishedAt string
}

// recent returns the most recent conversions, newest first.
func (j *journal) recent(ctx context.Context, limit int) ([]entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT source, artifact, format, status, error, warnings, finished_at
		 FROM conversions ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.Source, &e.Artifact, &e.Format, &e.Status, &e.Error, &e.Warnings, &e.FinishedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// journalPath resolves the configured journal location.
func journalPath() (string, error) {
	if p := viper.GetString("journal"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfmill", "journal.db"), nil
}

// journalRecord writes every terminal job of a run to the journal,
// unless journaling is disabled.
func journalRecord(run *pdfmill.Run) error {
	if viper.GetBool("no-journal") {
		return nil
	}
	path, err := journalPath()
	if err != nil {
		return err
	}
	j, err := openJournal(path)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, job := range run.Jobs() {
		if !job.Status().Terminal() {
			continue
		}
		if err := j.add(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		path, err := journalPath()
		if err != nil {
			return err
		}
		j, err := openJournal(path)
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no conversions recorded")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-9s  %-8s  %s", e.FinishedAt, e.Status, e.Format, e.Source)
			if e.Status == "FAILED" {
				line += "  (" + firstLine(e.Error) + ")"
			} else if e.Warnings > 0 {
				line += fmt.Sprintf("  (%d warnings)", e.Warnings)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to show")

	rootCmd.AddCommand(historyCmd)
}
