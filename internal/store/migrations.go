package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Words table - one row per vocabulary item
		`CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			features INTEGER NOT NULL DEFAULT 0,
			sequences INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Word sequences table - one recorded example per row, frames as JSON
		`CREATE TABLE IF NOT EXISTS word_sequences (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			word_id TEXT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
			sequence_index INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Selections table - the outcome of one selector run for one word
		`CREATE TABLE IF NOT EXISTS selections (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			word TEXT NOT NULL,
			strategy TEXT NOT NULL CHECK(strategy IN ('constant', 'bic', 'dic', 'cv')),
			states INTEGER NOT NULL,
			score REAL,
			outcome TEXT NOT NULL CHECK(outcome IN ('selected', 'constant', 'fallback', 'absent')),
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_word_sequences_word_id ON word_sequences(word_id)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_run_id ON selections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_word ON selections(word)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
