package importer

// validate.go checks the canonical import graph for structural and
// referential correctness before any write happens. The pass is purely
// in-memory: every natural key a record references must be present in the
// same graph, so the database is never consulted. Blocking errors stop the
// import; warnings are surfaced but never block. The one mutation the
// validator performs is overriding a record's foreign business_id to the
// active catalog scope, which is reported as a warning.

import (
	"fmt"
	"strings"

	"github.com/menuforge/backend/internal/catalog"
)

// Entity kind names used in validation issues.
const (
	EntityCategory = "category"
	EntityItem     = "item"
	EntitySize     = "size"
	EntityGroup    = "modifier_group"
	EntityModifier = "modifier"
	EntityOverride = "item_modifier_override"
)

// Issue is one validation finding, attributed to an exact file, row, and
// field so the caller can act on it.
type Issue struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Entity  string `json:"entity"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s:%d: %s.%s: %s", i.File, i.Line, i.Entity, i.Field, i.Message)
	if i.Value != "" {
		s += fmt.Sprintf(" (%q)", i.Value)
	}
	return s
}

// Report is the outcome of validating a graph. A commit may proceed only
// when Errors is empty; Warnings never block.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Blocked reports whether the graph has blocking errors.
func (r Report) Blocked() bool { return len(r.Errors) > 0 }

type validator struct {
	g     *Graph
	scope string
	rep   Report

	// natural-key indexes built over the graph, all folded
	categories map[string]bool
	sizes      map[string]bool
	groups     map[string]bool
	modifiers  map[[2]string]bool
	items      map[string]bool
	groupMods  map[string]int // folded group key -> declared modifier count
}

// Validate checks a canonical graph against the target catalog scope and
// returns every blocking error and warning found. It tolerates absent or
// empty entity lists and never consults the store.
func Validate(g *Graph, scope string) Report {
	v := &validator{
		g:          g,
		scope:      scope,
		categories: make(map[string]bool),
		sizes:      make(map[string]bool),
		groups:     make(map[string]bool),
		modifiers:  make(map[[2]string]bool),
		items:      make(map[string]bool),
		groupMods:  make(map[string]int),
	}

	v.buildIndexes()
	v.checkCategories()
	v.checkSizes()
	v.checkGroups()
	v.checkModifiers()
	v.checkItems()
	v.checkOverrides()

	return v.rep
}

func foldKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (v *validator) errorf(ref RowRef, entity, field, value, format string, args ...any) {
	v.rep.Errors = append(v.rep.Errors, Issue{
		File: ref.File, Line: ref.Line, Entity: entity, Field: field,
		Message: fmt.Sprintf(format, args...), Value: value,
	})
}

func (v *validator) warnf(ref RowRef, entity, field, value, format string, args ...any) {
	v.rep.Warnings = append(v.rep.Warnings, Issue{
		File: ref.File, Line: ref.Line, Entity: entity, Field: field,
		Message: fmt.Sprintf(format, args...), Value: value,
	})
}

// buildIndexes records which natural keys exist in the graph, for
// cross-reference resolution independent of row or file order.
func (v *validator) buildIndexes() {
	for _, c := range v.g.Categories {
		v.categories[foldKey(c.Name)] = true
	}
	for _, s := range v.g.Sizes {
		v.sizes[foldKey(s.Code)] = true
	}
	for _, g := range v.g.Groups {
		v.groups[foldKey(g.Key)] = true
	}
	for _, m := range v.g.Modifiers {
		v.modifiers[[2]string{foldKey(m.GroupKey), foldKey(m.Key)}] = true
		v.groupMods[foldKey(m.GroupKey)]++
	}
	for _, i := range v.g.Items {
		v.items[foldKey(i.Key)] = true
	}
}

func (v *validator) checkCategories() {
	seen := make(map[string]bool)
	for _, c := range v.g.Categories {
		if c.Name == "" {
			v.errorf(c.RowRef, EntityCategory, "name", "", "name is required")
			continue
		}
		key := foldKey(c.Name)
		if seen[key] {
			v.errorf(c.RowRef, EntityCategory, "name", c.Name, "duplicate category name")
		}
		seen[key] = true
	}
}

func (v *validator) checkSizes() {
	// Sizes are catalog-global, but the same code may appear once per item
	// to carry the per-item default marker; only a repeated (code, item)
	// pair is a duplicate.
	seen := make(map[[2]string]bool)
	for _, s := range v.g.Sizes {
		if s.Code == "" {
			v.errorf(s.RowRef, EntitySize, "size_code", "", "size code is required")
			continue
		}
		key := [2]string{foldKey(s.Code), foldKey(s.ItemKey)}
		if seen[key] {
			v.errorf(s.RowRef, EntitySize, "size_code", s.Code, "duplicate size code")
		}
		seen[key] = true

		if s.IsDefault && s.ItemKey == "" {
			v.errorf(s.RowRef, EntitySize, "item_key", "", "default size must name the item it is default for")
		}
		if s.ItemKey != "" && !v.items[foldKey(s.ItemKey)] {
			v.errorf(s.RowRef, EntitySize, "item_key", s.ItemKey, "unknown item %q", s.ItemKey)
		}
	}
}

func (v *validator) checkGroups() {
	seen := make(map[string]bool)
	for gi := range v.g.Groups {
		g := &v.g.Groups[gi]
		if g.Name == "" {
			v.errorf(g.RowRef, EntityGroup, "name", "", "name is required")
			continue
		}
		key := foldKey(g.Key)
		if seen[key] {
			v.errorf(g.RowRef, EntityGroup, "group_key", g.Key, "duplicate modifier group")
		}
		seen[key] = true

		switch g.DisplayType {
		case catalog.DisplaySingleSelect, catalog.DisplayMultiSelect:
		case "":
			v.errorf(g.RowRef, EntityGroup, "display_type", "", "display_type is required")
		default:
			v.errorf(g.RowRef, EntityGroup, "display_type", g.DisplayType,
				"display_type must be %q or %q", catalog.DisplaySingleSelect, catalog.DisplayMultiSelect)
		}

		if g.MinSelect > g.MaxSelect {
			v.errorf(g.RowRef, EntityGroup, "min_select", fmt.Sprintf("%d", g.MinSelect),
				"min_select %d exceeds max_select %d", g.MinSelect, g.MaxSelect)
		}
		if g.MinSelect < 0 {
			v.errorf(g.RowRef, EntityGroup, "min_select", fmt.Sprintf("%d", g.MinSelect), "min_select must not be negative")
		}

		v.checkTierDefaults(g.RowRef, EntityGroup, g.QuantityLevels)

		for _, sp := range g.SizePrices {
			if !v.sizes[foldKey(sp.SizeCode)] {
				v.errorf(g.RowRef, EntityGroup, "prices_by_size", sp.SizeCode, "unknown size code %q", sp.SizeCode)
			}
		}

		if count := v.groupMods[key]; g.MaxSelect > count {
			v.warnf(g.RowRef, EntityGroup, "max_select", fmt.Sprintf("%d", g.MaxSelect),
				"max_select %d exceeds the %d modifiers declared for this group", g.MaxSelect, count)
		}

		if g.ParentItem != "" {
			v.warnf(g.RowRef, EntityGroup, "parent", g.ParentItem,
				"group parent item is not auto-linked; add override rows to attach the group to %q", g.ParentItem)
		}

		if g.BusinessID != "" && g.BusinessID != v.scope {
			v.warnf(g.RowRef, EntityGroup, "business_id", g.BusinessID,
				"business_id %q overridden to active catalog %q", g.BusinessID, v.scope)
			g.BusinessID = v.scope
		}
	}
}

func (v *validator) checkModifiers() {
	seen := make(map[[2]string]bool)
	for _, m := range v.g.Modifiers {
		if m.Name == "" {
			v.errorf(m.RowRef, EntityModifier, "name", "", "name is required")
			continue
		}
		if m.GroupKey == "" {
			v.errorf(m.RowRef, EntityModifier, "group_key", "", "group_key is required")
			continue
		}

		key := [2]string{foldKey(m.GroupKey), foldKey(m.Key)}
		if seen[key] {
			v.errorf(m.RowRef, EntityModifier, "modifier_key", m.Key, "duplicate modifier in group %q", m.GroupKey)
		}
		seen[key] = true

		if !v.groups[foldKey(m.GroupKey)] {
			v.errorf(m.RowRef, EntityModifier, "group_key", m.GroupKey, "unknown modifier group %q", m.GroupKey)
		}
		if m.MaxQuantity < 1 {
			v.errorf(m.RowRef, EntityModifier, "max_quantity", fmt.Sprintf("%d", m.MaxQuantity), "max_quantity must be at least 1")
		}
	}
}

func (v *validator) checkItems() {
	seenNames := make(map[[2]string]bool)
	seenKeys := make(map[string]bool)
	for ii := range v.g.Items {
		i := &v.g.Items[ii]
		if i.Name == "" {
			v.errorf(i.RowRef, EntityItem, "name", "", "name is required")
			continue
		}
		// Category is optional; the reference is checked only when named.
		if i.Category != "" && !v.categories[foldKey(i.Category)] {
			v.errorf(i.RowRef, EntityItem, "category_name", i.Category, "unknown category %q", i.Category)
		}

		nameKey := [2]string{foldKey(i.Name), foldKey(i.Category)}
		if seenNames[nameKey] {
			v.errorf(i.RowRef, EntityItem, "name", i.Name, "duplicate item name in category %q", i.Category)
		}
		seenNames[nameKey] = true

		if seenKeys[foldKey(i.Key)] {
			v.errorf(i.RowRef, EntityItem, "item_key", i.Key, "duplicate item key")
		}
		seenKeys[foldKey(i.Key)] = true

		if i.DefaultSizeCode != "" && !v.sizes[foldKey(i.DefaultSizeCode)] {
			v.errorf(i.RowRef, EntityItem, "default_size_code", i.DefaultSizeCode, "unknown size code %q", i.DefaultSizeCode)
		}

		if i.BusinessID != "" && i.BusinessID != v.scope {
			v.warnf(i.RowRef, EntityItem, "business_id", i.BusinessID,
				"business_id %q overridden to active catalog %q", i.BusinessID, v.scope)
			i.BusinessID = v.scope
		}
	}
}

func (v *validator) checkOverrides() {
	seen := make(map[[3]string]bool)
	for _, o := range v.g.Overrides {
		if o.ItemKey == "" || o.GroupKey == "" || o.ModifierKey == "" {
			v.errorf(o.RowRef, EntityOverride, "item_key", "",
				"item_key, group_key, and modifier_key are all required")
			continue
		}

		key := [3]string{foldKey(o.ItemKey), foldKey(o.GroupKey), foldKey(o.ModifierKey)}
		if seen[key] {
			v.errorf(o.RowRef, EntityOverride, "modifier_key", o.ModifierKey, "duplicate override")
		}
		seen[key] = true

		if !v.items[foldKey(o.ItemKey)] {
			v.errorf(o.RowRef, EntityOverride, "item_key", o.ItemKey, "unknown item %q", o.ItemKey)
		}
		if !v.groups[foldKey(o.GroupKey)] {
			v.errorf(o.RowRef, EntityOverride, "group_key", o.GroupKey, "unknown modifier group %q", o.GroupKey)
		}
		if !v.modifiers[[2]string{foldKey(o.GroupKey), foldKey(o.ModifierKey)}] {
			v.errorf(o.RowRef, EntityOverride, "modifier_key", o.ModifierKey,
				"unknown modifier %q in group %q", o.ModifierKey, o.GroupKey)
		}
		if o.MaxQuantity != 0 && o.MaxQuantity < 1 {
			v.errorf(o.RowRef, EntityOverride, "max_quantity", fmt.Sprintf("%d", o.MaxQuantity), "max_quantity must be at least 1")
		}

		v.checkTierDefaults(o.RowRef, EntityOverride, o.QuantityLevels)
	}
}

// checkTierDefaults enforces that at most one quantity tier is the default.
func (v *validator) checkTierDefaults(ref RowRef, entity string, tiers []catalog.QuantityTier) {
	defaults := 0
	for _, t := range tiers {
		if t.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		v.errorf(ref, entity, "quantity_levels", "", "at most one quantity tier may be the default")
	}
}
