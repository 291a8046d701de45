package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Lookup methods return (nil, nil) when no row matches; name and code
// matching is case-insensitive within the business scope.

// CategoryRepository persists menu categories.
type CategoryRepository interface {
	FindByName(ctx context.Context, businessID, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
}

// SizeRepository persists business-wide sizes.
type SizeRepository interface {
	FindByCode(ctx context.Context, businessID, code string) (*Size, error)
	Create(ctx context.Context, s *Size) error
	Update(ctx context.Context, s *Size) error
}

// ModifierGroupRepository persists modifier groups. Update writes the
// group's quantity tiers and size prices wholesale.
type ModifierGroupRepository interface {
	FindByName(ctx context.Context, businessID, name string) (*ModifierGroup, error)
	Create(ctx context.Context, g *ModifierGroup) error
	Update(ctx context.Context, g *ModifierGroup) error
}

// ModifierRepository persists modifiers within a group.
type ModifierRepository interface {
	FindByName(ctx context.Context, groupID, name string) (*Modifier, error)
	Create(ctx context.Context, m *Modifier) error
	Update(ctx context.Context, m *Modifier) error
}

// ItemRepository persists menu items.
type ItemRepository interface {
	FindByName(ctx context.Context, businessID, categoryID, name string) (*Item, error)
	Create(ctx context.Context, i *Item) error
	Update(ctx context.Context, i *Item) error
	SetDefaultSize(ctx context.Context, itemID, sizeID string) error
}

// ItemModifierGroupRepository persists item-to-group assignments.
// ReplaceForItem atomically swaps the item's complete assignment list.
type ItemModifierGroupRepository interface {
	ListForItem(ctx context.Context, itemID string) ([]ItemModifierGroup, error)
	ReplaceForItem(ctx context.Context, itemID string, assignments []ItemModifierGroup) error
}

// Repos bundles every repository bound to one database session. All writes
// issued through one Repos value inside InTx share the same transaction.
type Repos struct {
	Categories CategoryRepository
	Sizes      SizeRepository
	Groups     ModifierGroupRepository
	Modifiers  ModifierRepository
	Items      ItemRepository
	ItemGroups ItemModifierGroupRepository
}

// Store opens transactions over the catalog. fn runs with repositories
// bound to a single transaction; a non-nil error rolls everything back.
type Store interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}
