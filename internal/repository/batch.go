package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"listing-tracker/internal/common"
	"listing-tracker/internal/entity"
)

// BatchStatusRepository persists batch progress documents. Put writes the
// whole row; the orchestrator's single writer goroutine is the only caller,
// so no read-modify-write races reach the store.
type BatchStatusRepository interface {
	Create(ctx context.Context, b *entity.BatchProgress) error
	Put(ctx context.Context, b *entity.BatchProgress) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BatchProgress, error)
}

type batchStatusRepo struct {
	db  Querier
	log *slog.Logger
}

func NewBatchStatusRepository(db Querier, log *slog.Logger) BatchStatusRepository {
	if log == nil {
		log = slog.Default()
	}
	return &batchStatusRepo{db: db, log: log}
}

func (r *batchStatusRepo) Create(ctx context.Context, b *entity.BatchProgress) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO batch_status (id, total, completed, failed, current_status, items, created_at, expire_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.Total, b.Completed, b.Failed, b.CurrentStatus, items, b.CreatedAt, b.ExpireAt,
	)
	if err != nil {
		r.log.Error("batch_status create failed", "batch_id", b.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("batch_status created", "batch_id", b.ID, "total", b.Total, "expire_at", b.ExpireAt)
	return nil
}

func (r *batchStatusRepo) Put(ctx context.Context, b *entity.BatchProgress) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		UPDATE batch_status
		SET completed = $2, failed = $3, current_status = $4, items = $5
		WHERE id = $1`,
		b.ID, b.Completed, b.Failed, b.CurrentStatus, items,
	)
	if err != nil {
		r.log.Error("batch_status put failed", "batch_id", b.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *batchStatusRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.BatchProgress, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, total, completed, failed, current_status, items, created_at, expire_at
		FROM batch_status WHERE id = $1`, id)

	var b entity.BatchProgress
	var items []byte
	err := row.Scan(&b.ID, &b.Total, &b.Completed, &b.Failed, &b.CurrentStatus, &items, &b.CreatedAt, &b.ExpireAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return &b, nil
}
