package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/shakehands/internal/volume"
)

// StateRepository persists the controller state in a single row.
type StateRepository struct {
	db *sql.DB
}

// States returns the volume state repository for this store.
func (s *Store) States() *StateRepository {
	return &StateRepository{db: s.db}
}

// Load returns the saved state, or ErrNotFound on a fresh database.
func (r *StateRepository) Load() (volume.State, error) {
	var st volume.State
	err := r.db.QueryRow(
		`SELECT volume, increase_count, decrease_count FROM volume_state WHERE id = 1`,
	).Scan(&st.Volume, &st.IncreaseCount, &st.DecreaseCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return volume.State{}, ErrNotFound
		}
		return volume.State{}, err
	}
	return st, nil
}

// Save overwrites the saved state.
func (r *StateRepository) Save(st volume.State) error {
	_, err := r.db.Exec(
		`INSERT INTO volume_state (id, volume, increase_count, decrease_count, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   volume = excluded.volume,
		   increase_count = excluded.increase_count,
		   decrease_count = excluded.decrease_count,
		   updated_at = excluded.updated_at`,
		st.Volume, st.IncreaseCount, st.DecreaseCount, time.Now(),
	)
	return err
}
