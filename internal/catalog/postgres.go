package catalog

// postgres.go implements the repository contracts over pgx.
//
// Natural-key lookups use lower() comparisons backed by functional unique
// indexes (see migrations), so two concurrent imports creating the same
// key cannot both succeed: the loser fails with a unique violation and the
// whole transaction rolls back.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore opens catalog transactions on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// InTx runs fn inside a single read-committed transaction. Every
// repository handed to fn issues its statements on that transaction.
func (s *PGStore) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos binds all repositories to one database session.
func NewRepos(db DBTX) Repos {
	return Repos{
		Categories: &pgCategories{db: db},
		Sizes:      &pgSizes{db: db},
		Groups:     &pgGroups{db: db},
		Modifiers:  &pgModifiers{db: db},
		Items:      &pgItems{db: db},
		ItemGroups: &pgItemGroups{db: db},
	}
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type pgCategories struct {
	db DBTX
}

func (r *pgCategories) FindByName(ctx context.Context, businessID, name string) (*Category, error) {
	const query = `
        SELECT id, business_id, name, description, sort_order, is_active, created_at, updated_at
        FROM categories
        WHERE business_id = $1 AND lower(name) = lower($2)
        LIMIT 1`

	var c Category
	err := r.db.QueryRow(ctx, query, businessID, name).Scan(
		&c.ID, &c.BusinessID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *pgCategories) Create(ctx context.Context, c *Category) error {
	const query = `
        INSERT INTO categories (id, business_id, name, description, sort_order, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.BusinessID, c.Name, c.Description, c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *pgCategories) Update(ctx context.Context, c *Category) error {
	const query = `
        UPDATE categories
        SET name = $2, description = $3, sort_order = $4, is_active = $5, updated_at = $6
        WHERE id = $1`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.SortOrder, c.IsActive, c.UpdatedAt)
	return err
}

// ---------------------------------------------------------------------------
// Sizes
// ---------------------------------------------------------------------------

type pgSizes struct {
	db DBTX
}

func (r *pgSizes) FindByCode(ctx context.Context, businessID, code string) (*Size, error) {
	const query = `
        SELECT id, business_id, code, name, price, display_order, is_active, created_at, updated_at
        FROM sizes
        WHERE business_id = $1 AND lower(code) = lower($2)
        LIMIT 1`

	var s Size
	err := r.db.QueryRow(ctx, query, businessID, code).Scan(
		&s.ID, &s.BusinessID, &s.Code, &s.Name, &s.Price, &s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *pgSizes) Create(ctx context.Context, s *Size) error {
	const query = `
        INSERT INTO sizes (id, business_id, code, name, price, display_order, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.BusinessID, s.Code, s.Name, s.Price, s.DisplayOrder, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *pgSizes) Update(ctx context.Context, s *Size) error {
	const query = `
        UPDATE sizes
        SET name = $2, price = $3, display_order = $4, is_active = $5, updated_at = $6
        WHERE id = $1`

	_, err := r.db.Exec(ctx, query, s.ID, s.Name, s.Price, s.DisplayOrder, s.IsActive, s.UpdatedAt)
	return err
}

// ---------------------------------------------------------------------------
// Modifier groups
// ---------------------------------------------------------------------------

type pgGroups struct {
	db DBTX
}

func (r *pgGroups) FindByName(ctx context.Context, businessID, name string) (*ModifierGroup, error) {
	const query = `
        SELECT id, business_id, name, display_type, min_select, max_select,
               applies_per_quantity, quantity_levels, size_prices, created_at, updated_at
        FROM modifier_groups
        WHERE business_id = $1 AND lower(name) = lower($2)
        LIMIT 1`

	var g ModifierGroup
	var levels, prices []byte
	err := r.db.QueryRow(ctx, query, businessID, name).Scan(
		&g.ID, &g.BusinessID, &g.Name, &g.DisplayType, &g.MinSelect, &g.MaxSelect,
		&g.AppliesPerQuantity, &levels, &prices, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := unmarshalTiers(levels, &g.QuantityLevels); err != nil {
		return nil, err
	}
	if err := unmarshalTiers(prices, &g.SizePrices); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *pgGroups) Create(ctx context.Context, g *ModifierGroup) error {
	levels, prices, err := marshalGroupTiers(g)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO modifier_groups
            (id, business_id, name, display_type, min_select, max_select,
             applies_per_quantity, quantity_levels, size_prices, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		g.ID, g.BusinessID, g.Name, g.DisplayType, g.MinSelect, g.MaxSelect,
		g.AppliesPerQuantity, levels, prices, g.CreatedAt, g.UpdatedAt)
	return err
}

func (r *pgGroups) Update(ctx context.Context, g *ModifierGroup) error {
	levels, prices, err := marshalGroupTiers(g)
	if err != nil {
		return err
	}

	// quantity_levels and size_prices are replaced wholesale: the import is
	// authoritative for nested pricing, not additive.
	const query = `
        UPDATE modifier_groups
        SET name = $2, display_type = $3, min_select = $4, max_select = $5,
            applies_per_quantity = $6, quantity_levels = $7, size_prices = $8, updated_at = $9
        WHERE id = $1`

	_, err = r.db.Exec(ctx, query,
		g.ID, g.Name, g.DisplayType, g.MinSelect, g.MaxSelect,
		g.AppliesPerQuantity, levels, prices, g.UpdatedAt)
	return err
}

func marshalGroupTiers(g *ModifierGroup) (levels, prices []byte, err error) {
	levels, err = json.Marshal(emptyIfNilTiers(g.QuantityLevels))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal quantity levels: %w", err)
	}
	prices, err = json.Marshal(emptyIfNilPrices(g.SizePrices))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal size prices: %w", err)
	}
	return levels, prices, nil
}

func emptyIfNilTiers(t []QuantityTier) []QuantityTier {
	if t == nil {
		return []QuantityTier{}
	}
	return t
}

func emptyIfNilPrices(p []SizePrice) []SizePrice {
	if p == nil {
		return []SizePrice{}
	}
	return p
}

func unmarshalTiers(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// ---------------------------------------------------------------------------
// Modifiers
// ---------------------------------------------------------------------------

type pgModifiers struct {
	db DBTX
}

func (r *pgModifiers) FindByName(ctx context.Context, groupID, name string) (*Modifier, error) {
	const query = `
        SELECT id, group_id, name, display_order, is_active, is_default, max_quantity, created_at, updated_at
        FROM modifiers
        WHERE group_id = $1 AND lower(name) = lower($2)
        LIMIT 1`

	var m Modifier
	err := r.db.QueryRow(ctx, query, groupID, name).Scan(
		&m.ID, &m.GroupID, &m.Name, &m.DisplayOrder, &m.IsActive, &m.IsDefault, &m.MaxQuantity,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *pgModifiers) Create(ctx context.Context, m *Modifier) error {
	const query = `
        INSERT INTO modifiers (id, group_id, name, display_order, is_active, is_default, max_quantity, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		m.ID, m.GroupID, m.Name, m.DisplayOrder, m.IsActive, m.IsDefault, m.MaxQuantity,
		m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *pgModifiers) Update(ctx context.Context, m *Modifier) error {
	const query = `
        UPDATE modifiers
        SET name = $2, display_order = $3, is_active = $4, is_default = $5, max_quantity = $6, updated_at = $7
        WHERE id = $1`

	_, err := r.db.Exec(ctx, query,
		m.ID, m.Name, m.DisplayOrder, m.IsActive, m.IsDefault, m.MaxQuantity, m.UpdatedAt)
	return err
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

type pgItems struct {
	db DBTX
}

func (r *pgItems) FindByName(ctx context.Context, businessID, categoryID, name string) (*Item, error) {
	// category_id is NULL for uncategorized items; an empty categoryID
	// argument matches those rows.
	const query = `
        SELECT id, business_id, COALESCE(category_id, ''), name, description, base_price,
               is_sizeable, is_customizable, is_active, is_available, is_signature,
               sort_order, default_size_id, created_at, updated_at
        FROM items
        WHERE business_id = $1 AND COALESCE(category_id, '') = $2 AND lower(name) = lower($3)
        LIMIT 1`

	var i Item
	err := r.db.QueryRow(ctx, query, businessID, categoryID, name).Scan(
		&i.ID, &i.BusinessID, &i.CategoryID, &i.Name, &i.Description, &i.BasePrice,
		&i.IsSizeable, &i.IsCustomizable, &i.IsActive, &i.IsAvailable, &i.IsSignature,
		&i.SortOrder, &i.DefaultSizeID, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (r *pgItems) Create(ctx context.Context, i *Item) error {
	const query = `
        INSERT INTO items
            (id, business_id, category_id, name, description, base_price,
             is_sizeable, is_customizable, is_active, is_available, is_signature,
             sort_order, default_size_id, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		i.ID, i.BusinessID, i.CategoryID, i.Name, i.Description, i.BasePrice,
		i.IsSizeable, i.IsCustomizable, i.IsActive, i.IsAvailable, i.IsSignature,
		i.SortOrder, i.DefaultSizeID, i.CreatedAt, i.UpdatedAt)
	return err
}

func (r *pgItems) Update(ctx context.Context, i *Item) error {
	const query = `
        UPDATE items
        SET category_id = NULLIF($2, ''), name = $3, description = $4, base_price = $5,
            is_sizeable = $6, is_customizable = $7, is_active = $8, is_available = $9,
            is_signature = $10, sort_order = $11, updated_at = $12
        WHERE id = $1`

	_, err := r.db.Exec(ctx, query,
		i.ID, i.CategoryID, i.Name, i.Description, i.BasePrice,
		i.IsSizeable, i.IsCustomizable, i.IsActive, i.IsAvailable,
		i.IsSignature, i.SortOrder, i.UpdatedAt)
	return err
}

func (r *pgItems) SetDefaultSize(ctx context.Context, itemID, sizeID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE items SET default_size_id = $2 WHERE id = $1`, itemID, sizeID)
	return err
}

// ---------------------------------------------------------------------------
// Item modifier-group assignments
// ---------------------------------------------------------------------------

type pgItemGroups struct {
	db DBTX
}

func (r *pgItemGroups) ListForItem(ctx context.Context, itemID string) ([]ItemModifierGroup, error) {
	const query = `
        SELECT id, item_id, group_id, display_order, overrides, created_at, updated_at
        FROM item_modifier_groups
        WHERE item_id = $1
        ORDER BY display_order`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemModifierGroup
	for rows.Next() {
		var a ItemModifierGroup
		var overrides []byte
		if err := rows.Scan(&a.ID, &a.ItemID, &a.GroupID, &a.DisplayOrder, &overrides, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalTiers(overrides, &a.Overrides); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *pgItemGroups) ReplaceForItem(ctx context.Context, itemID string, assignments []ItemModifierGroup) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM item_modifier_groups WHERE item_id = $1`, itemID); err != nil {
		return err
	}

	const query = `
        INSERT INTO item_modifier_groups (id, item_id, group_id, display_order, overrides, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, a := range assignments {
		overrides, err := json.Marshal(a.Overrides)
		if err != nil {
			return fmt.Errorf("marshal overrides: %w", err)
		}
		if _, err := r.db.Exec(ctx, query,
			a.ID, itemID, a.GroupID, a.DisplayOrder, overrides, a.CreatedAt, a.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}
