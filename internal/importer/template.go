package importer

// Template column sets for the entity-specific encoding. These are the
// headers Parse recognizes for each kind; serving them as downloadable
// CSV templates keeps the accepted format discoverable without docs
// drifting out of sync.
var templateColumns = map[string][]string{
	"categories": {"name", "description", "sort_order", "is_active"},
	"items": {
		"item_key", "name", "category_name", "description", "base_price",
		"is_sizeable", "is_customizable", "is_active", "is_available",
		"is_signature", "sort_order", "default_size_code",
	},
	"sizes": {
		"size_code", "name", "price", "display_order",
		"is_active", "is_default", "item_key",
	},
	"modifier_groups": {
		"group_key", "name", "display_type", "min_select", "max_select",
		"applies_per_quantity", "quantity_levels", "prices_by_size",
	},
	"modifiers": {
		"group_key", "modifier_key", "name", "display_order",
		"is_active", "is_default", "max_quantity",
	},
	"overrides": {
		"item_key", "group_key", "modifier_key", "max_quantity",
		"is_default", "prices_by_size", "quantity_levels",
	},
	"generic": {
		"type", "name", "parent", "description", "price",
		"display_type", "min_select", "max_select", "active",
	},
}

// TemplateColumns returns the CSV header row for an entity template.
// The second return value is false for unknown entity names.
func TemplateColumns(entity string) ([]string, bool) {
	cols, ok := templateColumns[entity]
	return cols, ok
}

// TemplateEntities lists the entity names TemplateColumns accepts.
func TemplateEntities() []string {
	return []string{
		"categories", "items", "sizes",
		"modifier_groups", "modifiers", "overrides", "generic",
	}
}
