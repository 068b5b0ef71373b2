package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

// RecordRepository implements models.Repository[*models.FileRecord] for
// per-file processing outcomes.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository with the given database connection
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new file record into the database with a generated ID
func (r *RecordRepository) Create(record *models.FileRecord) error {
	id := shared.GenerateID()
	record.SetID(id)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO records (id, batch_id, subject, session, run, pattern, outcome, detail, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		record.BatchID(),
		record.Subject(),
		record.Session(),
		record.Run(),
		record.Pattern(),
		string(record.Outcome()),
		record.Detail(),
		record.RowCount(),
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// Get retrieves a file record by ID
func (r *RecordRepository) Get(id string) (*models.FileRecord, error) {
	query := `
		SELECT id, batch_id, subject, session, run, pattern, outcome, detail, row_count, created_at
		FROM records
		WHERE id = ?
	`

	var (
		recordID  string
		batchID   string
		subject   string
		session   string
		run       string
		pattern   string
		outcome   string
		detail    string
		rowCount  int
		createdAt time.Time
	)

	err := r.db.QueryRow(query, id).Scan(&recordID, &batchID, &subject, &session, &run, &pattern, &outcome, &detail, &rowCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: record %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	record := models.NewFileRecord(batchID, subject, session, run, pattern, models.Outcome(outcome))
	record.SetID(recordID)
	record.SetDetail(detail)
	record.SetRowCount(rowCount)
	record.SetCreatedAt(createdAt)

	return record, nil
}

// Update modifies the detail and row count of an existing record
func (r *RecordRepository) Update(record *models.FileRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE records
		SET outcome = ?, detail = ?, row_count = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(record.Outcome()),
		record.Detail(),
		record.RowCount(),
		record.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: record %s", shared.ErrRecordNotFound, record.ID())
	}

	return nil
}

// Delete removes a file record by ID
func (r *RecordRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: record %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// List retrieves records matching the given criteria in insertion order
func (r *RecordRepository) List(criteria map[string]any) ([]*models.FileRecord, error) {
	query := `
		SELECT id, batch_id, subject, session, run, pattern, outcome, detail, row_count, created_at
		FROM records
		WHERE 1 = 1
	`

	args := []any{}

	if batchID, ok := criteria["batch_id"].(string); ok && batchID != "" {
		query += " AND batch_id = ?"
		args = append(args, batchID)
	}

	if subject, ok := criteria["subject"].(string); ok && subject != "" {
		query += " AND subject = ?"
		args = append(args, subject)
	}

	if outcome, ok := criteria["outcome"].(string); ok && outcome != "" {
		query += " AND outcome = ?"
		args = append(args, outcome)
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*models.FileRecord
	for rows.Next() {
		var (
			recordID  string
			batchID   string
			subject   string
			session   string
			run       string
			pattern   string
			outcome   string
			detail    string
			rowCount  int
			createdAt time.Time
		)

		if err := rows.Scan(&recordID, &batchID, &subject, &session, &run, &pattern, &outcome, &detail, &rowCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		record := models.NewFileRecord(batchID, subject, session, run, pattern, models.Outcome(outcome))
		record.SetID(recordID)
		record.SetDetail(detail)
		record.SetRowCount(rowCount)
		record.SetCreatedAt(createdAt)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// TallyByOutcome counts a batch's records grouped by outcome
func (r *RecordRepository) TallyByOutcome(batchID string) (map[models.Outcome]int, error) {
	query := `
		SELECT outcome, COUNT(*)
		FROM records
		WHERE batch_id = ?
		GROUP BY outcome
	`

	rows, err := r.db.Query(query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally records: %w", err)
	}
	defer rows.Close()

	tally := map[models.Outcome]int{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tally[models.Outcome(outcome)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tally, nil
}
