package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Volume state - a single row holding the controller state
		`CREATE TABLE IF NOT EXISTS volume_state (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			volume REAL NOT NULL,
			increase_count INTEGER NOT NULL,
			decrease_count INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Decisions table - history of controller transitions
		`CREATE TABLE IF NOT EXISTS decisions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			total REAL NOT NULL,
			samples INTEGER NOT NULL,
			direction TEXT NOT NULL CHECK(direction IN ('up', 'down')),
			step REAL NOT NULL,
			previous REAL NOT NULL,
			volume REAL NOT NULL,
			increase_count INTEGER NOT NULL,
			decrease_count INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
