package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registration-service/common/metrics"
	"registration-service/internal/db"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const tableName = "registrations"

type Repository interface {
	Insert(ctx context.Context, rec *Record) (*Record, error)
	ListNewestFirst(ctx context.Context) ([]Record, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// Insert writes rec as a single statement and fills in the generated id and
// created_at.
func (r *repository) Insert(ctx context.Context, rec *Record) (*Record, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(rec).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", tableName, time.Since(start), err)

	if err != nil {
		return nil, classifyStorageError(err)
	}
	return rec, nil
}

func (r *repository) ListNewestFirst(ctx context.Context) ([]Record, error) {
	start := time.Now()
	records := make([]Record, 0)
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("created_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	if err != nil {
		return nil, classifyStorageError(err)
	}
	return records, nil
}

// Schema returns the models and indexes the repository relies on.
func Schema() ([]any, []db.Index) {
	models := []any{(*Record)(nil)}
	indexes := []db.Index{
		{Model: (*Record)(nil), Name: "registrations_created_at_idx", Columns: []string{"created_at"}},
	}
	return models, indexes
}

// classifyStorageError maps postgres integrity violations to
// ErrStorageRejected and everything else to ErrStorageUnavailable.
func classifyStorageError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return fmt.Errorf("%w: %w", ErrStorageRejected, err)
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
