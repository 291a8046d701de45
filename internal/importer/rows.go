package importer

// rows.go decodes individual tabular rows into canonical records. Each
// entity kind has an explicit reader that either yields a typed record or
// records a structured parse error; raw cell maps never cross the
// ingestor boundary.

import (
	"encoding/json"
	"strings"

	"github.com/menuforge/backend/internal/catalog"
)

// rowReader reads typed cells from one row. The first coercion failure is
// captured as a *FormatError attributed to the row; later reads still run
// so record construction stays linear.
type rowReader struct {
	row []string
	idx headerIndex
	ref RowRef
	err *FormatError
}

func (r *rowReader) fail(field, msg, value string) {
	if r.err == nil {
		r.err = formatErrorf(r.ref.File, r.ref.Line, "%s: %s: %q", field, msg, value)
	}
}

func (r *rowReader) str(name string) string {
	return r.idx.cell(r.row, name)
}

// strAny returns the first non-blank value among the named columns.
func (r *rowReader) strAny(names ...string) string {
	for _, n := range names {
		if v := r.str(n); v != "" {
			return v
		}
	}
	return ""
}

func (r *rowReader) boolOr(name string, def bool) bool {
	pos, ok := r.idx[name]
	if !ok || pos >= len(r.row) {
		return def
	}
	v := cleanCell(r.row[pos])
	if v == "" {
		return def
	}
	return parseBool(v)
}

func (r *rowReader) intOr(name string, def int) int {
	v := r.str(name)
	if v == "" {
		return def
	}
	i, ok := parseInt(v)
	if !ok {
		r.fail(name, "invalid integer", v)
		return def
	}
	return i
}

func (r *rowReader) floatOr(name string, def float64) float64 {
	v := r.str(name)
	if v == "" {
		return def
	}
	f, ok := parseFloat(v)
	if !ok {
		r.fail(name, "invalid number", v)
		return def
	}
	return f
}

// tiers decodes a JSON-encoded quantity tier array cell.
func (r *rowReader) tiers(name string) []catalog.QuantityTier {
	v := r.str(name)
	if v == "" {
		return nil
	}
	var out []catalog.QuantityTier
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		r.fail(name, "invalid JSON array", v)
		return nil
	}
	return out
}

// sizePrices decodes a JSON-encoded per-size price array cell.
func (r *rowReader) sizePrices(name string) []SizePriceRef {
	v := r.str(name)
	if v == "" {
		return nil
	}
	var out []SizePriceRef
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		r.fail(name, "invalid JSON array", v)
		return nil
	}
	return out
}

// ---------------------------------------------------------------------------
// Entity-specific encoding
// ---------------------------------------------------------------------------

func readCategory(r *rowReader) CategoryRecord {
	return CategoryRecord{
		RowRef:      r.ref,
		Name:        r.str("name"),
		Description: r.str("description"),
		SortOrder:   r.intOr("sort_order", 0),
		IsActive:    r.boolOr("is_active", true),
	}
}

func readItem(r *rowReader) ItemRecord {
	name := r.str("name")
	key := r.str("item_key")
	if key == "" {
		key = name
	}
	return ItemRecord{
		RowRef:          r.ref,
		Key:             key,
		BusinessID:      r.str("business_id"),
		Name:            name,
		Category:        r.strAny("category_name", "category_id"),
		Description:     r.str("description"),
		BasePrice:       r.floatOr("base_price", 0),
		IsSizeable:      r.boolOr("is_sizeable", false),
		IsCustomizable:  r.boolOr("is_customizable", false),
		IsActive:        r.boolOr("is_active", true),
		IsAvailable:     r.boolOr("is_available", true),
		IsSignature:     r.boolOr("is_signature", false),
		SortOrder:       r.intOr("sort_order", 0),
		DefaultSizeCode: r.str("default_size_code"),
	}
}

func readSize(r *rowReader) SizeRecord {
	code := r.str("size_code")
	name := r.str("name")
	if name == "" {
		name = code
	}
	return SizeRecord{
		RowRef:       r.ref,
		ItemKey:      r.str("item_key"),
		Code:         code,
		Name:         name,
		Price:        r.floatOr("price", 0),
		DisplayOrder: r.intOr("display_order", 0),
		IsActive:     r.boolOr("is_active", true),
		IsDefault:    r.boolOr("is_default", false),
	}
}

func readGroup(r *rowReader) GroupRecord {
	name := r.str("name")
	key := r.str("group_key")
	if key == "" {
		key = name
	}
	return GroupRecord{
		RowRef:             r.ref,
		Key:                key,
		BusinessID:         r.str("business_id"),
		Name:               name,
		DisplayType:        strings.ToLower(r.str("display_type")),
		MinSelect:          r.intOr("min_select", 0),
		MaxSelect:          r.intOr("max_select", 0),
		AppliesPerQuantity: r.boolOr("applies_per_quantity", false),
		QuantityLevels:     r.tiers("quantity_levels"),
		SizePrices:         r.sizePrices("prices_by_size"),
	}
}

func readModifier(r *rowReader) ModifierRecord {
	name := r.str("name")
	key := r.str("modifier_key")
	if key == "" {
		key = name
	}
	return ModifierRecord{
		RowRef:       r.ref,
		GroupKey:     r.str("group_key"),
		Key:          key,
		Name:         name,
		DisplayOrder: r.intOr("display_order", 0),
		IsActive:     r.boolOr("is_active", true),
		IsDefault:    r.boolOr("is_default", false),
		MaxQuantity:  r.intOr("max_quantity", 1),
	}
}

func readOverride(r *rowReader) OverrideRecord {
	return OverrideRecord{
		RowRef:         r.ref,
		ItemKey:        r.str("item_key"),
		GroupKey:       r.str("group_key"),
		ModifierKey:    r.str("modifier_key"),
		MaxQuantity:    r.intOr("max_quantity", 0),
		IsDefault:      r.boolOr("is_default", false),
		SizePrices:     r.sizePrices("prices_by_size"),
		QuantityLevels: r.tiers("quantity_levels"),
	}
}

// ---------------------------------------------------------------------------
// Generic type-column encoding
// ---------------------------------------------------------------------------

// Generic row types.
const (
	typeCategory = "CATEGORY"
	typeItem     = "ITEM"
	typeSize     = "SIZE"
	typeModGroup = "MOD_GROUP"
	typeModifier = "MODIFIER"
)

// parseGenericRows decodes the generic encoding, where each row declares
// its own entity kind in the "type" column and names its owner in
// "parent": an ITEM's parent is its category, a SIZE's parent is its item,
// a MODIFIER's parent is its modifier group. A MOD_GROUP's parent may name
// an item; it is recorded but an explicit override row is still required
// to attach the group to that item.
func parseGenericRows(g *Graph, rows []tableRow, idx headerIndex, file string) error {
	for _, row := range rows {
		ref := RowRef{File: file, Line: row.line}
		r := &rowReader{row: row.cells, idx: idx, ref: ref}

		typ := strings.ToUpper(r.str("type"))
		switch typ {
		case typeCategory:
			g.Categories = append(g.Categories, CategoryRecord{
				RowRef:      ref,
				Name:        r.str("name"),
				Description: r.str("description"),
				SortOrder:   r.intOr("sort_order", 0),
				IsActive:    r.boolOr("active", true),
			})

		case typeItem:
			name := r.str("name")
			g.Items = append(g.Items, ItemRecord{
				RowRef:      ref,
				Key:         name,
				Name:        name,
				Category:    r.str("parent"),
				Description: r.str("description"),
				BasePrice:   r.floatOr("price", r.floatOr("value", 0)),
				IsActive:    r.boolOr("active", true),
				IsAvailable: true,
				SortOrder:   r.intOr("sort_order", 0),
			})

		case typeSize:
			name := r.str("name")
			g.Sizes = append(g.Sizes, SizeRecord{
				RowRef:       ref,
				ItemKey:      r.str("parent"),
				Code:         name,
				Name:         name,
				Price:        r.floatOr("price", r.floatOr("value", 0)),
				DisplayOrder: r.intOr("sort_order", 0),
				IsActive:     r.boolOr("active", true),
				IsDefault:    r.boolOr("is_default", false),
			})

		case typeModGroup:
			name := r.str("name")
			g.Groups = append(g.Groups, GroupRecord{
				RowRef:      ref,
				Key:         name,
				Name:        name,
				DisplayType: strings.ToLower(r.str("display_type")),
				MinSelect:   r.intOr("min_select", 0),
				MaxSelect:   r.intOr("max_select", 0),
				ParentItem:  r.str("parent"),
			})

		case typeModifier:
			name := r.str("name")
			g.Modifiers = append(g.Modifiers, ModifierRecord{
				RowRef:       ref,
				GroupKey:     r.str("parent"),
				Key:          name,
				Name:         name,
				DisplayOrder: r.intOr("sort_order", 0),
				IsActive:     r.boolOr("active", true),
				IsDefault:    r.boolOr("is_default", false),
				MaxQuantity:  r.intOr("max_quantity", 1),
			})

		case "":
			return formatErrorf(file, ref.Line, "missing type value")
		default:
			return formatErrorf(file, ref.Line, "unknown type value %q", typ)
		}

		if r.err != nil {
			return r.err
		}
	}
	return nil
}
