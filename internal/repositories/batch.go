package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

// BatchRepository implements models.Repository[*models.Batch] for processing history.
//
// Each batch records one analysis invocation: its level, study root, task and
// aggregate outcome counts.
type BatchRepository struct {
	db *sql.DB
}

// NewBatchRepository creates a new BatchRepository with the given database connection
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a new batch into the database with generated ID and sequence
func (r *BatchRepository) Create(batch *models.Batch) error {
	sequence, err := NextSequence(r.db, "batches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	batch.SetID(id)
	batch.SetSequence(sequence)

	if err := batch.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO batches (id, sequence, level, root, task, started_at, finished_at, processed, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var finishedAt any
	if t := batch.FinishedAt(); t != nil {
		finishedAt = *t
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(batch.Level()),
		batch.Root(),
		batch.Task(),
		batch.StartedAt(),
		finishedAt,
		batch.Processed(),
		batch.Skipped(),
		batch.Failed(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	return nil
}

// Get retrieves a batch by ID
func (r *BatchRepository) Get(id string) (*models.Batch, error) {
	query := `
		SELECT id, sequence, level, root, task, started_at, finished_at, processed, skipped, failed
		FROM batches
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update persists the mutable batch fields: completion time and counts
func (r *BatchRepository) Update(batch *models.Batch) error {
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE batches
		SET finished_at = ?, processed = ?, skipped = ?, failed = ?
		WHERE id = ?
	`

	var finishedAt any
	if t := batch.FinishedAt(); t != nil {
		finishedAt = *t
	}

	result, err := r.db.Exec(query,
		finishedAt,
		batch.Processed(),
		batch.Skipped(),
		batch.Failed(),
		batch.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: batch %s", shared.ErrRecordNotFound, batch.ID())
	}

	return nil
}

// Delete removes a batch and its file records
func (r *BatchRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE batch_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete batch records: %w", err)
	}

	result, err := tx.Exec("DELETE FROM batches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: batch %s", shared.ErrRecordNotFound, id)
	}

	return tx.Commit()
}

// List retrieves batches matching the given criteria, most recent first
func (r *BatchRepository) List(criteria map[string]any) ([]*models.Batch, error) {
	query := `
		SELECT id, sequence, level, root, task, started_at, finished_at, processed, skipped, failed
		FROM batches
		WHERE 1 = 1
	`

	args := []any{}

	if level, ok := criteria["level"].(string); ok && level != "" {
		query += " AND level = ?"
		args = append(args, level)
	}

	if root, ok := criteria["root"].(string); ok && root != "" {
		query += " AND root = ?"
		args = append(args, root)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.Batch
	for rows.Next() {
		batch, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return batches, nil
}

// scanOne scans a single row into a [models.Batch]
func (r *BatchRepository) scanOne(row *sql.Row) (*models.Batch, error) {
	var (
		id         string
		sequence   int
		level      string
		root       string
		task       string
		startedAt  time.Time
		finishedAt sql.NullTime
		processed  int
		skipped    int
		failed     int
	)

	err := row.Scan(&id, &sequence, &level, &root, &task, &startedAt, &finishedAt, &processed, &skipped, &failed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: batch", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}

	batch := models.NewBatch(sequence, models.AnalysisLevel(level), root, task)
	batch.SetID(id)
	batch.SetStartedAt(startedAt)
	if finishedAt.Valid {
		batch.SetFinishedAt(&finishedAt.Time)
	}
	batch.SetCounts(processed, skipped, failed)

	return batch, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Batch]
func (r *BatchRepository) scanRow(rows *sql.Rows) (*models.Batch, error) {
	var (
		id         string
		sequence   int
		level      string
		root       string
		task       string
		startedAt  time.Time
		finishedAt sql.NullTime
		processed  int
		skipped    int
		failed     int
	)

	err := rows.Scan(&id, &sequence, &level, &root, &task, &startedAt, &finishedAt, &processed, &skipped, &failed)
	if err != nil {
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}

	batch := models.NewBatch(sequence, models.AnalysisLevel(level), root, task)
	batch.SetID(id)
	batch.SetStartedAt(startedAt)
	if finishedAt.Valid {
		batch.SetFinishedAt(&finishedAt.Time)
	}
	batch.SetCounts(processed, skipped, failed)

	return batch, nil
}
