// Package storage provides SQLite-based persistence for recorded runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("storage: run not found")

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// RunRecord is one recorded simulation run.
type RunRecord struct {
	ID         string // UUID, assigned by SaveRun when empty
	ScenarioID string
	Frames     int    // Frames evaluated
	FinalPhase string // Phase the next frame would have run
	Energies   []int  // Hero energy followed by each enemy's energy
	Digest     string // Trace fingerprint
	Trace      string // Full text trace
	Scenario   string // YAML of the scenario that produced the run
	RosterKey  string // Scenario fingerprint; runs compare digests only within one key
	CreatedAt  time.Time
}

// ScenarioStats contains aggregated run statistics for a scenario.
type ScenarioStats struct {
	ScenarioID string
	Runs       int
	Digests    int // Distinct digests across all frame budgets
	LastRun    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist and adds
// columns missing from databases written by older versions.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario_id TEXT NOT NULL,
			frames INTEGER NOT NULL,
			final_phase TEXT NOT NULL,
			energies TEXT NOT NULL,
			digest TEXT NOT NULL,
			trace TEXT NOT NULL,
			scenario TEXT NOT NULL DEFAULT '',
			roster_key TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	for _, col := range []string{"scenario", "roster_key"} {
		if err := s.addColumn("runs", col, "TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_roster ON runs(scenario_id, frames, roster_key)`)
	return err
}

// addColumn adds column to table unless it is already there.
func (s *Store) addColumn(table, column, decl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and returns its ID.
func (s *Store) SaveRun(r RunRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, scenario_id, frames, final_phase, energies, digest, trace, scenario, roster_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ScenarioID, r.Frames, r.FinalPhase, encodeEnergies(r.Energies), r.Digest, r.Trace,
		r.Scenario, r.RosterKey,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	return r.ID, nil
}

// Run retrieves a run by ID. A unique ID prefix of at least 8
// characters is accepted as well; the prefix is matched literally.
func (s *Store) Run(id string) (*RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE id = ? OR (length(?) >= 8 AND substr(id, 1, length(?)) = ?)
		 LIMIT 2`,
		id, id, id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch len(runs) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &runs[0], nil
	default:
		for i := range runs {
			if runs[i].ID == id {
				return &runs[i], nil
			}
		}
		return nil, fmt.Errorf("storage: run id prefix %q is ambiguous", id)
	}
}

// RecentRuns retrieves the most recent runs, newest first. An empty
// scenarioID matches every scenario.
func (s *Store) RecentRuns(scenarioID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE ? = '' OR scenario_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		scenarioID, scenarioID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Digests returns the distinct trace digests recorded for a scenario at
// a given frame budget and roster key.
func (s *Store) Digests(scenarioID string, frames int, rosterKey string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT digest FROM runs
		 WHERE scenario_id = ? AND frames = ? AND roster_key = ?
		 ORDER BY digest`,
		scenarioID, frames, rosterKey,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query digests: %w", err)
	}
	defer rows.Close()

	var digests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		digests = append(digests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return digests, nil
}

// AllScenarioStats retrieves statistics for every scenario with runs.
func (s *Store) AllScenarioStats() (map[string]*ScenarioStats, error) {
	rows, err := s.db.Query(
		`SELECT scenario_id, COUNT(*), COUNT(DISTINCT digest), MAX(created_at)
		 FROM runs
		 GROUP BY scenario_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scenario stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScenarioStats)
	for rows.Next() {
		var st ScenarioStats
		var lastRun any
		if err := rows.Scan(&st.ScenarioID, &st.Runs, &st.Digests, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats[st.ScenarioID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// DeleteRuns deletes all runs for the given scenario and reports how
// many were removed.
func (s *Store) DeleteRuns(scenarioID string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM runs WHERE scenario_id = ?", scenarioID)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count deleted runs: %w", err)
	}
	return n, nil
}

const runColumns = "id, scenario_id, frames, final_phase, energies, digest, trace, scenario, roster_key, created_at"

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var energies string
		var createdAt any
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.Frames, &r.FinalPhase,
			&energies, &r.Digest, &r.Trace, &r.Scenario, &r.RosterKey, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		var err error
		if r.Energies, err = decodeEnergies(energies); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func encodeEnergies(energies []int) string {
	parts := make([]string, len(energies))
	for i, e := range energies {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

func decodeEnergies(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("storage: corrupt energies %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
