package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"llm_dispatch/internal/models"
)

// UsageRepository persists dispatch telemetry records for usage metering.
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a usage repository.
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Create inserts a single dispatch record.
func (r *UsageRepository) Create(ctx context.Context, record *models.DispatchRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO dispatch_records (id, request_id, provider, endpoint_kind,
		                              model, outcome, status_code, elapsed_ms,
		                              input_tokens, output_tokens)
		VALUES (:id, :request_id, :provider, :endpoint_kind, :model, :outcome,
		        :status_code, :elapsed_ms, :input_tokens, :output_tokens)
	`

	if _, err := r.db.conn.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert dispatch record: %w", err)
	}
	return nil
}

// CreateBatch inserts records in one transaction. All-or-nothing: a failed
// insert rolls back the whole batch so the worker can retry it.
func (r *UsageRepository) CreateBatch(ctx context.Context, records []*models.DispatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO dispatch_records (id, request_id, provider, endpoint_kind,
		                              model, outcome, status_code, elapsed_ms,
		                              input_tokens, output_tokens)
		VALUES (:id, :request_id, :provider, :endpoint_kind, :model, :outcome,
		        :status_code, :elapsed_ms, :input_tokens, :output_tokens)
	`

	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
			return fmt.Errorf("failed to insert dispatch record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dispatch records: %w", err)
	}
	return nil
}

// TotalsByProvider aggregates token usage per provider, the query the
// metering side reads.
func (r *UsageRepository) TotalsByProvider(ctx context.Context) (map[string]models.Usage, error) {
	query := `
		SELECT provider,
		       COALESCE(SUM(input_tokens), 0)  AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM dispatch_records
		WHERE outcome = 'success'
		GROUP BY provider
	`

	var rows []struct {
		Provider     string `db:"provider"`
		InputTokens  int    `db:"input_tokens"`
		OutputTokens int    `db:"output_tokens"`
	}
	if err := r.db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	totals := make(map[string]models.Usage, len(rows))
	for _, row := range rows {
		totals[row.Provider] = models.Usage{
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		}
	}
	return totals, nil
}
