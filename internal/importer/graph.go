package importer

import "github.com/menuforge/backend/internal/catalog"

// RowRef locates a canonical record in its source file for error
// attribution. The header row is line 1, so the first data row is line 2.
type RowRef struct {
	File string
	Line int
}

// CategoryRecord is a canonical category row. Natural key: Name
// (case-insensitive within the catalog scope).
type CategoryRecord struct {
	RowRef
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}

// ItemRecord is a canonical item row. Natural key: (Name, Category).
// Key is the import-local handle other rows use to reference the item
// (item_key when present, otherwise the name).
type ItemRecord struct {
	RowRef
	Key             string
	BusinessID      string
	Name            string
	Category        string
	Description     string
	BasePrice       float64
	IsSizeable      bool
	IsCustomizable  bool
	IsActive        bool
	IsAvailable     bool
	IsSignature     bool
	SortOrder       int
	DefaultSizeCode string
}

// SizeRecord is a canonical size row. Natural key: Code, scoped to the
// catalog, not to an item. ItemKey carries the "is default for item X"
// marker and, in the generic encoding, the owning item's natural key.
type SizeRecord struct {
	RowRef
	ItemKey      string
	Code         string
	Name         string
	Price        float64
	DisplayOrder int
	IsActive     bool
	IsDefault    bool
}

// SizePriceRef is a per-size price delta referencing the size by code.
// The committer rewrites codes to size ids.
type SizePriceRef struct {
	SizeCode string  `json:"size_code"`
	Price    float64 `json:"price"`
}

// GroupRecord is a canonical modifier group row. Key is the import-local
// group identifier (group_key, typically the name). ParentItem is only set
// by the generic encoding when a MOD_GROUP row names an item as its
// parent; it is parsed but never auto-linked, and an explicit override row is
// required to attach a group to an item.
type GroupRecord struct {
	RowRef
	Key                string
	BusinessID         string
	Name               string
	DisplayType        string
	MinSelect          int
	MaxSelect          int
	AppliesPerQuantity bool
	QuantityLevels     []catalog.QuantityTier
	SizePrices         []SizePriceRef
	ParentItem         string
}

// ModifierRecord is a canonical modifier row. Natural key: (GroupKey, Key).
type ModifierRecord struct {
	RowRef
	GroupKey     string
	Key          string
	Name         string
	DisplayOrder int
	IsActive     bool
	IsDefault    bool
	MaxQuantity  int
}

// OverrideRecord is a canonical item-modifier override row. Natural key:
// (ItemKey, GroupKey, ModifierKey).
type OverrideRecord struct {
	RowRef
	ItemKey        string
	GroupKey       string
	ModifierKey    string
	MaxQuantity    int
	IsDefault      bool
	SizePrices     []SizePriceRef
	QuantityLevels []catalog.QuantityTier
}

// Graph is the canonical import graph: one list per entity kind, keyed by
// natural keys. It is produced fresh per upload by [Parse], checked by
// [Validate], and consumed by [Committer.Commit]. Lists are concatenated
// across archive members without deduplication; duplicates are the
// validator's concern.
type Graph struct {
	Categories []CategoryRecord
	Sizes      []SizeRecord
	Groups     []GroupRecord
	Modifiers  []ModifierRecord
	Items      []ItemRecord
	Overrides  []OverrideRecord

	// Files lists every source file that contributed records, in the
	// order they were parsed.
	Files []string
}

// Empty reports whether the graph holds no records at all.
func (g *Graph) Empty() bool {
	return len(g.Categories) == 0 && len(g.Sizes) == 0 && len(g.Groups) == 0 &&
		len(g.Modifiers) == 0 && len(g.Items) == 0 && len(g.Overrides) == 0
}

// merge concatenates another partial graph into g, per entity kind.
func (g *Graph) merge(other *Graph) {
	g.Categories = append(g.Categories, other.Categories...)
	g.Sizes = append(g.Sizes, other.Sizes...)
	g.Groups = append(g.Groups, other.Groups...)
	g.Modifiers = append(g.Modifiers, other.Modifiers...)
	g.Items = append(g.Items, other.Items...)
	g.Overrides = append(g.Overrides, other.Overrides...)
	g.Files = append(g.Files, other.Files...)
}
