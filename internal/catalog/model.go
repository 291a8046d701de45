// Package catalog defines the persisted menu domain model and the
// repository contracts the import pipeline commits through.
//
// All entities are scoped to a business (the tenant boundary). Natural keys
// (category name, size code, group name, modifier name within its group,
// item name within its category) are unique per scope and matched
// case-insensitively; durable identity is a uuid string assigned on create.
package catalog

import "time"

// Display types for modifier groups.
const (
	DisplaySingleSelect = "single_select"
	DisplayMultiSelect  = "multi_select"
)

// Category groups items on the menu. Natural key: name within business.
type Category struct {
	ID          string
	BusinessID  string
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Size is a business-wide size definition (S, M, L, ...). Natural key: code
// within business. Sizes are global, not per-item; an item only references
// its default size.
type Size struct {
	ID           string
	BusinessID   string
	Code         string
	Name         string
	Price        float64
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuantityTier is one step of quantity-dependent pricing. At most one tier
// in a list may be the default.
type QuantityTier struct {
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	IsDefault bool    `json:"is_default"`
}

// SizePrice is a price delta for a specific size, referenced by size id.
type SizePrice struct {
	SizeID string  `json:"size_id"`
	Price  float64 `json:"price"`
}

// ModifierGroup is a set of selectable modifiers (e.g. "Toppings").
// Natural key: name within business. QuantityLevels and SizePrices are
// owned wholesale by the group: an update replaces them, never merges.
type ModifierGroup struct {
	ID                 string
	BusinessID         string
	Name               string
	DisplayType        string
	MinSelect          int
	MaxSelect          int
	AppliesPerQuantity bool
	QuantityLevels     []QuantityTier
	SizePrices         []SizePrice
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Modifier is one choice within a modifier group. Natural key: name within
// its group.
type Modifier struct {
	ID           string
	GroupID      string
	Name         string
	DisplayOrder int
	IsActive     bool
	IsDefault    bool
	MaxQuantity  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item is a sellable menu entry. Natural key: (name, category) within
// business. CategoryID is empty for uncategorized items (stored as NULL).
// DefaultSizeID is nil until a default size is linked.
type Item struct {
	ID             string
	BusinessID     string
	CategoryID     string
	Name           string
	Description    string
	BasePrice      float64
	IsSizeable     bool
	IsCustomizable bool
	IsActive       bool
	IsAvailable    bool
	IsSignature    bool
	SortOrder      int
	DefaultSizeID  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ModifierOverride customizes one modifier's behavior for a specific item.
type ModifierOverride struct {
	ModifierID     string         `json:"modifier_id"`
	MaxQuantity    int            `json:"max_quantity"`
	IsDefault      bool           `json:"is_default"`
	SizePrices     []SizePrice    `json:"size_prices,omitempty"`
	QuantityLevels []QuantityTier `json:"quantity_levels,omitempty"`
}

// ItemModifierGroup assigns a modifier group to an item, with per-modifier
// overrides. An item's assignment list is rebuilt as a unit.
type ItemModifierGroup struct {
	ID           string
	ItemID       string
	GroupID      string
	DisplayOrder int
	Overrides    []ModifierOverride
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
