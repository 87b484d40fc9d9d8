package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Word represents a vocabulary item stored in the database.
type Word struct {
	ID        string
	Name      string
	Features  int
	Sequences int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WordRepository provides CRUD operations for words.
type WordRepository struct {
	db *sql.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

const wordColumns = `id, name, features, sequences, created_at, updated_at`

// Create inserts a new word into the database.
func (r *WordRepository) Create(w *Word) error {
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO words (id, name, features, sequences, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Features, w.Sequences, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// GetByID retrieves a word by its ID.
func (r *WordRepository) GetByID(id string) (*Word, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+wordColumns+` FROM words WHERE id = ?`, id))
}

// GetByName retrieves a word by its name.
func (r *WordRepository) GetByName(name string) (*Word, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+wordColumns+` FROM words WHERE name = ?`, name))
}

func (r *WordRepository) scanOne(row *sql.Row) (*Word, error) {
	w := &Word{}
	err := row.Scan(&w.ID, &w.Name, &w.Features, &w.Sequences, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// List retrieves all words in insertion order.
func (r *WordRepository) List() ([]*Word, error) {
	rows, err := r.db.Query(`SELECT ` + wordColumns + ` FROM words ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*Word
	for rows.Next() {
		w := &Word{}
		if err := rows.Scan(&w.ID, &w.Name, &w.Features, &w.Sequences, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Delete removes a word and, through the cascade, its sequences.
func (r *WordRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
