// Package history persists comparison outcomes in DuckDB so score drift
// can be queried across many run pairs.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/jakobsg/rundiff/internal/vcf"
)

// Store manages a DuckDB connection for recording score differences.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS score_diffs (
		run_id1 VARCHAR,
		run_id2 VARCHAR,
		label VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		score1 INTEGER,
		score2 INTEGER,
		recorded_at TIMESTAMP
	)`)
	return err
}

// RecordScoreDiffs batch-appends the differently scored variants of one
// comparison using the Appender API. Absent scores are stored as NULL.
func (s *Store) RecordScoreDiffs(runID1, runID2, label string, diffs []*vcf.DiffScoredVariant) error {
	if len(diffs) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "score_diffs")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	now := time.Now()
	for _, d := range diffs {
		if err := appender.AppendRow(
			runID1,
			runID2,
			label,
			d.R1.Chrom,
			int64(d.R1.Pos),
			d.R1.Ref,
			d.R1.Alt,
			nullableScore(d.R1.RankScore),
			nullableScore(d.R2.RankScore),
			now,
		); err != nil {
			return fmt.Errorf("append score diff: %w", err)
		}
	}

	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush appender: %w", err)
	}
	return nil
}

func nullableScore(score *int) any {
	if score == nil {
		return nil
	}
	return int32(*score)
}

// CountRecorded returns the number of recorded score diffs for a run pair.
func (s *Store) CountRecorded(runID1, runID2 string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM score_diffs WHERE run_id1 = ? AND run_id2 = ?`,
		runID1, runID2,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recorded diffs: %w", err)
	}
	return count, nil
}
