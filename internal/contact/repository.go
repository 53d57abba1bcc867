package contact

import (
	"context"
	"fmt"
	"time"

	"portfolio-service/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, submission *Submission) error
	GetAll(ctx context.Context) ([]Submission, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
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

func (r *repository) Create(ctx context.Context, submission *Submission) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(submission).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "contacts", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	return nil
}

func (r *repository) GetAll(ctx context.Context) ([]Submission, error) {
	start := time.Now()
	submissions := []Submission{}
	err := r.db.NewSelect().
		Model(&submissions).
		Order("created_at DESC", "id DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "contacts", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return submissions, nil
}

// UpdateStatus changes only the status column; zero affected rows means the id is unknown.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Submission)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "contacts", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("updating contact %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating contact %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
