package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Listing struct {
	Base
	OwnerID     uuid.UUID       `db:"owner_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
}
