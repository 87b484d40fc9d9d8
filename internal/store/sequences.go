package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/sequence"
)

// StoredSequence represents one recorded example of a word.
type StoredSequence struct {
	ID            int64
	WordID        string
	SequenceIndex int
	Frames        sequence.Sequence
	CreatedAt     time.Time
}

// SequenceRepository provides operations on word sequences.
type SequenceRepository struct {
	db *sql.DB
}

// Sequences returns the sequence repository for this store.
func (s *Store) Sequences() *SequenceRepository {
	return &SequenceRepository{db: s.db}
}

// Append adds seqs after the word's existing sequences in a single
// transaction and refreshes the word's sequence and feature counts.
// Every frame must have the same width as the word's existing frames.
func (r *SequenceRepository) Append(wordID string, seqs []sequence.Sequence) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count, features int
	err = tx.QueryRow(`SELECT sequences, features FROM words WHERE id = ?`, wordID).Scan(&count, &features)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	for i, s := range seqs {
		for j, f := range s {
			if features == 0 {
				features = len(f)
			}
			if len(f) != features {
				return fmt.Errorf("sequence %d frame %d has %d features, expected %d", i, j, len(f), features)
			}
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO word_sequences (word_id, sequence_index, frames, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range seqs {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode sequence %d: %w", i, err)
		}
		if _, err := stmt.Exec(wordID, count+i, len(s), string(data)); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE words SET sequences = ?, features = ?, updated_at = ? WHERE id = ?`,
		count+len(seqs), features, time.Now(), wordID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByWordID retrieves all sequences for a word in recording order.
func (r *SequenceRepository) GetByWordID(wordID string) ([]StoredSequence, error) {
	rows, err := r.db.Query(
		`SELECT id, word_id, sequence_index, data, created_at
		 FROM word_sequences
		 WHERE word_id = ?
		 ORDER BY sequence_index`,
		wordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seqs []StoredSequence
	for rows.Next() {
		var s StoredSequence
		var data string
		if err := rows.Scan(&s.ID, &s.WordID, &s.SequenceIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &s.Frames); err != nil {
			return nil, fmt.Errorf("failed to decode sequence %d: %w", s.ID, err)
		}
		seqs = append(seqs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seqs, nil
}

// DeleteByWordID removes all sequences for a word and resets its counts.
func (r *SequenceRepository) DeleteByWordID(wordID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM word_sequences WHERE word_id = ?`, wordID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE words SET sequences = 0, features = 0, updated_at = ? WHERE id = ?`, time.Now(), wordID); err != nil {
		return err
	}
	return tx.Commit()
}
