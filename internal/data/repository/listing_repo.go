package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	query := `
		SELECT id, owner_id, title, description, price, created_at, updated_at, deleted_at
		FROM listings
		WHERE id = $1 AND deleted_at IS NULL
	`

	var listing entity.Listing
	err := r.db.QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.CreatedAt,
		&listing.UpdatedAt,
		&listing.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing by ID",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing by ID %s: %w", id.String(), err)
	}

	return &listing, nil
}
