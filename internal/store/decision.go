package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/shakehands/internal/volume"
)

// Decision is a stored controller transition.
type Decision struct {
	ID        string           `json:"id"`
	Total     float64          `json:"total"`
	Samples   int              `json:"samples"`
	Direction volume.Direction `json:"direction"`
	Step      float64          `json:"step"`
	Previous  float64          `json:"previous"`
	Volume    float64          `json:"volume"`
	State     volume.State     `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewDecision wraps a controller decision for storage.
func NewDecision(d volume.Decision) *Decision {
	return &Decision{
		Total:     d.Total,
		Samples:   d.Samples,
		Direction: d.Direction,
		Step:      d.Step,
		Previous:  d.Previous,
		Volume:    d.Volume,
		State:     d.State,
	}
}

// DecisionRepository stores the decision history.
type DecisionRepository struct {
	db *sql.DB
}

// Decisions returns the decision repository for this store.
func (s *Store) Decisions() *DecisionRepository {
	return &DecisionRepository{db: s.db}
}

// Create inserts a decision, assigning an ID and timestamp when unset.
func (r *DecisionRepository) Create(d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO decisions (id, total, samples, direction, step, previous, volume, increase_count, decrease_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Total, d.Samples, string(d.Direction), d.Step, d.Previous, d.Volume,
		d.State.IncreaseCount, d.State.DecreaseCount, d.CreatedAt,
	)
	return err
}

// DefaultListLimit is used when ListRecent gets a non-positive limit.
const DefaultListLimit = 50

// ListRecent returns up to limit decisions, newest first.
func (r *DecisionRepository) ListRecent(limit int) ([]*Decision, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, total, samples, direction, step, previous, volume, increase_count, decrease_count, created_at
		 FROM decisions ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decisions := make([]*Decision, 0, limit)
	for rows.Next() {
		d := &Decision{}
		var direction string

		err := rows.Scan(&d.ID, &d.Total, &d.Samples, &direction, &d.Step, &d.Previous, &d.Volume,
			&d.State.IncreaseCount, &d.State.DecreaseCount, &d.CreatedAt)
		if err != nil {
			return nil, err
		}

		d.Direction = volume.Direction(direction)
		d.State.Volume = d.Volume
		decisions = append(decisions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return decisions, nil
}

// Count returns the number of stored decisions.
func (r *DecisionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep decisions and returns how many were removed.
func (r *DecisionRepository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM decisions WHERE seq NOT IN (SELECT seq FROM decisions ORDER BY seq DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
