package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Selection is the persisted outcome of selecting a model for one word
// during a run.
type Selection struct {
	ID       string
	RunID    string
	Word     string
	Strategy string
	States   int
	// Score is nil when the outcome carries no criterion value.
	Score     *float64
	Outcome   string
	Reason    string
	CreatedAt time.Time
}

// SelectionRepository provides operations on selection results.
type SelectionRepository struct {
	db *sql.DB
}

// Selections returns the selection repository for this store.
func (s *Store) Selections() *SelectionRepository {
	return &SelectionRepository{db: s.db}
}

const insertSelection = `INSERT INTO selections (id, run_id, word, strategy, states, score, outcome, reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts a selection result.
func (r *SelectionRepository) Create(sel *Selection) error {
	_, err := r.db.Exec(insertSelection, selectionArgs(sel)...)
	return err
}

// CreateRun inserts the selections of one run in a single transaction.
// Either every selection is stored or none is.
func (r *SelectionRepository) CreateRun(sels []*Selection) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSelection)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sel := range sels {
		if _, err := stmt.Exec(selectionArgs(sel)...); err != nil {
			return fmt.Errorf("insert selection for %q: %w", sel.Word, err)
		}
	}
	return tx.Commit()
}

// selectionArgs stamps CreatedAt and returns sel's insert arguments.
func selectionArgs(sel *Selection) []any {
	sel.CreatedAt = time.Now()

	var score sql.NullFloat64
	if sel.Score != nil {
		score = sql.NullFloat64{Float64: *sel.Score, Valid: true}
	}
	return []any{sel.ID, sel.RunID, sel.Word, sel.Strategy, sel.States, score, sel.Outcome, sel.Reason, sel.CreatedAt}
}

// ListByRun retrieves the selections of a run in the order they were stored.
func (r *SelectionRepository) ListByRun(runID string) ([]*Selection, error) {
	rows, err := r.db.Query(
		`SELECT id, run_id, word, strategy, states, score, outcome, reason, created_at
		 FROM selections
		 WHERE run_id = ?
		 ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sels []*Selection
	for rows.Next() {
		sel := &Selection{}
		var score sql.NullFloat64
		if err := rows.Scan(&sel.ID, &sel.RunID, &sel.Word, &sel.Strategy, &sel.States,
			&score, &sel.Outcome, &sel.Reason, &sel.CreatedAt); err != nil {
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			sel.Score = &v
		}
		sels = append(sels, sel)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(sels) == 0 {
		return nil, ErrNotFound
	}

	return sels, nil
}

// LatestRun returns the ID of the most recently stored run.
func (r *SelectionRepository) LatestRun() (string, error) {
	var runID string
	err := r.db.QueryRow(`SELECT run_id FROM selections ORDER BY rowid DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return runID, nil
}
