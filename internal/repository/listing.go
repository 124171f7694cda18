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

// ListingRepository is the store surface for assembled listings. The
// pipeline only ever calls Create; Update and Delete serve user edits
// through the API.
type ListingRepository interface {
	Create(ctx context.Context, l *entity.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	List(ctx context.Context) ([]*entity.Listing, error)
	Update(ctx context.Context, l *entity.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listingRepo struct {
	db  Querier
	log *slog.Logger
}

func NewListingRepository(db Querier, log *slog.Logger) ListingRepository {
	if log == nil {
		log = slog.Default()
	}
	return &listingRepo{db: db, log: log}
}

const listingColumns = `id, display_id, url, created_at, price, price_value, address, region,
	beds, baths, sqft, sqft_lot, year_built, days_on_market, armls, description,
	images, price_trend, price_drop_amount, original_price, reviewed, last_updated`

func (r *listingRepo) Create(ctx context.Context, l *entity.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		l.ID, l.DisplayID, l.URL, l.CreatedAt, l.Price, l.PriceValue, l.Address, l.Region,
		l.Beds, l.Baths, l.Sqft, l.SqftLot, l.YearBuilt, l.DaysOnMarket, l.ARMLS, l.Description,
		images, l.PriceTrend, l.PriceDropAmount, l.OriginalPrice, l.Reviewed, l.LastUpdated,
	)
	if err != nil {
		r.log.Error("listing create failed", "listing_id", l.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("listing created", "listing_id", l.ID, "display_id", l.DisplayID, "url", l.URL)
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return l, nil
}

func (r *listingRepo) List(ctx context.Context) ([]*entity.Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *listingRepo) Update(ctx context.Context, l *entity.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE listings SET
			price = $2, price_value = $3, address = $4, region = $5, beds = $6, baths = $7,
			sqft = $8, sqft_lot = $9, year_built = $10, days_on_market = $11, armls = $12,
			description = $13, images = $14, price_trend = $15, price_drop_amount = $16,
			original_price = $17, reviewed = $18, last_updated = $19
		WHERE id = $1`,
		l.ID, l.Price, l.PriceValue, l.Address, l.Region, l.Beds, l.Baths,
		l.Sqft, l.SqftLot, l.YearBuilt, l.DaysOnMarket, l.ARMLS,
		l.Description, images, l.PriceTrend, l.PriceDropAmount,
		l.OriginalPrice, l.Reviewed, l.LastUpdated,
	)
	if err != nil {
		r.log.Error("listing update failed", "listing_id", l.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *listingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	r.log.Info("listing deleted", "listing_id", id)
	return nil
}

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var l entity.Listing
	var images []byte
	err := row.Scan(
		&l.ID, &l.DisplayID, &l.URL, &l.CreatedAt, &l.Price, &l.PriceValue, &l.Address, &l.Region,
		&l.Beds, &l.Baths, &l.Sqft, &l.SqftLot, &l.YearBuilt, &l.DaysOnMarket, &l.ARMLS, &l.Description,
		&images, &l.PriceTrend, &l.PriceDropAmount, &l.OriginalPrice, &l.Reviewed, &l.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &l.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	return &l, nil
}
