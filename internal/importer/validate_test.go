package importer

import (
	"strings"
	"testing"

	"github.com/menuforge/backend/internal/catalog"
)

const testScope = "biz-1"

// validGraph builds a small graph that passes validation: one category,
// one item, one group with one modifier, one size, one override.
func validGraph() *Graph {
	return &Graph{
		Files:      []string{"menu.csv"},
		Categories: []CategoryRecord{{Name: "Burgers", IsActive: true}},
		Items: []ItemRecord{{
			Key: "classic", Name: "Classic", Category: "Burgers",
			BasePrice: 8.50, IsActive: true, IsAvailable: true,
		}},
		Sizes: []SizeRecord{{Code: "L", Name: "Large", Price: 2.00, IsActive: true}},
		Groups: []GroupRecord{{
			Key: "toppings", Name: "Toppings",
			DisplayType: catalog.DisplayMultiSelect, MinSelect: 0, MaxSelect: 1,
		}},
		Modifiers: []ModifierRecord{{
			GroupKey: "toppings", Key: "cheese", Name: "Cheese",
			IsActive: true, MaxQuantity: 1,
		}},
		Overrides: []OverrideRecord{{
			ItemKey: "classic", GroupKey: "toppings", ModifierKey: "cheese",
		}},
	}
}

// hasIssue reports whether any issue's message contains the substring.
func hasIssue(issues []Issue, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_CleanGraph(t *testing.T) {
	rep := Validate(validGraph(), testScope)
	if rep.Blocked() {
		t.Fatalf("clean graph blocked: %v", rep.Errors)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rep.Warnings)
	}
}

// ----------------------------------------------------------------------------
// Duplicate detection
// ----------------------------------------------------------------------------

func TestValidate_DuplicateItemInCategory(t *testing.T) {
	g := validGraph()
	g.Items = append(g.Items, ItemRecord{
		Key: "classic-2", Name: "classic", Category: "burgers",
	})

	rep := Validate(g, testScope)
	if !rep.Blocked() {
		t.Fatal("duplicate item name in category should block")
	}
	if !hasIssue(rep.Errors, "duplicate item name") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_SameNameDifferentCategory(t *testing.T) {
	g := validGraph()
	g.Categories = append(g.Categories, CategoryRecord{Name: "Specials"})
	g.Items = append(g.Items, ItemRecord{
		Key: "classic-special", Name: "Classic", Category: "Specials",
	})

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("same name in another category should be allowed: %v", rep.Errors)
	}
}

func TestValidate_DuplicateCategory(t *testing.T) {
	g := validGraph()
	g.Categories = append(g.Categories, CategoryRecord{Name: " BURGERS "})

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "duplicate category name") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_DuplicateSizePerItem(t *testing.T) {
	g := validGraph()
	// Same code for a different item is fine (per-item default markers)
	g.Items = append(g.Items, ItemRecord{Key: "cola", Name: "Cola", Category: "Burgers"})
	g.Sizes = append(g.Sizes,
		SizeRecord{Code: "L", ItemKey: "classic", IsDefault: true},
		SizeRecord{Code: "L", ItemKey: "cola"},
	)
	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("size code repeated across items should be allowed: %v", rep.Errors)
	}

	// The same (code, item) pair twice is a duplicate
	g.Sizes = append(g.Sizes, SizeRecord{Code: "l", ItemKey: "COLA"})
	rep = Validate(g, testScope)
	if !hasIssue(rep.Errors, "duplicate size code") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_DuplicateOverride(t *testing.T) {
	g := validGraph()
	g.Overrides = append(g.Overrides, OverrideRecord{
		ItemKey: "CLASSIC", GroupKey: "toppings", ModifierKey: "Cheese",
	})

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "duplicate override") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

// ----------------------------------------------------------------------------
// Required fields and value constraints
// ----------------------------------------------------------------------------

func TestValidate_MissingRequiredFields(t *testing.T) {
	g := &Graph{
		Categories: []CategoryRecord{{Name: ""}},
		Items:      []ItemRecord{{Key: "x", Name: "X"}}, // no category
		Sizes:      []SizeRecord{{Code: ""}},
		Groups:     []GroupRecord{{Key: "g", Name: "G"}}, // no display_type
		Modifiers:  []ModifierRecord{{Key: "m", Name: "M", MaxQuantity: 1}},
		Overrides:  []OverrideRecord{{ItemKey: "x"}},
	}

	rep := Validate(g, testScope)
	for _, want := range []string{
		"name is required",
		"size code is required",
		"display_type is required",
		"group_key is required",
		"modifier_key are all required",
	} {
		if !hasIssue(rep.Errors, want) {
			t.Errorf("missing error %q in %v", want, rep.Errors)
		}
	}
}

func TestValidate_ItemCategoryOptional(t *testing.T) {
	g := validGraph()
	g.Items[0].Category = ""

	rep := Validate(g, testScope)
	if hasIssue(rep.Errors, "category") {
		t.Errorf("blank category should pass, got %v", rep.Errors)
	}

	g = validGraph()
	g.Items[0].Category = "Ghost"
	rep = Validate(g, testScope)
	if !hasIssue(rep.Errors, `unknown category "Ghost"`) {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_GroupSelectionBounds(t *testing.T) {
	g := validGraph()
	g.Groups[0].MinSelect = 3
	g.Groups[0].MaxSelect = 1

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "exceeds max_select") {
		t.Errorf("errors = %v", rep.Errors)
	}

	g = validGraph()
	g.Groups[0].MinSelect = -1
	rep = Validate(g, testScope)
	if !hasIssue(rep.Errors, "must not be negative") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_BadDisplayType(t *testing.T) {
	g := validGraph()
	g.Groups[0].DisplayType = "dropdown"

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "display_type must be") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_ModifierMaxQuantity(t *testing.T) {
	g := validGraph()
	g.Modifiers[0].MaxQuantity = 0

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "max_quantity must be at least 1") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

func TestValidate_OverrideMaxQuantityZeroInherits(t *testing.T) {
	g := validGraph()
	g.Overrides[0].MaxQuantity = 0

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("override max_quantity 0 means inherit, should not block: %v", rep.Errors)
	}
}

func TestValidate_TierDefaults(t *testing.T) {
	g := validGraph()
	g.Groups[0].QuantityLevels = []catalog.QuantityTier{
		{Quantity: 1, Price: 0.5, IsDefault: true},
		{Quantity: 2, Price: 0.9, IsDefault: true},
	}

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "at most one quantity tier") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

// ----------------------------------------------------------------------------
// Reference resolution
// ----------------------------------------------------------------------------

func TestValidate_UnresolvedReferences(t *testing.T) {
	g := validGraph()
	g.Items[0].Category = "Desserts"
	g.Items[0].DefaultSizeCode = "XL"
	g.Modifiers[0].GroupKey = "sauces"
	g.Overrides[0].ItemKey = "ghost"
	g.Sizes[0].ItemKey = "ghost"

	rep := Validate(g, testScope)
	for _, want := range []string{
		`unknown category "Desserts"`,
		`unknown size code "XL"`,
		`unknown modifier group "sauces"`,
		`unknown item "ghost"`,
	} {
		if !hasIssue(rep.Errors, want) {
			t.Errorf("missing error %q in %v", want, rep.Errors)
		}
	}
}

func TestValidate_ReferencesFoldCaseAndSpace(t *testing.T) {
	g := validGraph()
	g.Items[0].Category = "  burgers "
	g.Overrides[0].GroupKey = "TOPPINGS"

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("folded references should resolve: %v", rep.Errors)
	}
}

func TestValidate_DefaultSizeWithoutItem(t *testing.T) {
	g := validGraph()
	g.Sizes[0].IsDefault = true // no ItemKey set

	rep := Validate(g, testScope)
	if !hasIssue(rep.Errors, "default size must name the item") {
		t.Errorf("errors = %v", rep.Errors)
	}
}

// ----------------------------------------------------------------------------
// Warnings
// ----------------------------------------------------------------------------

func TestValidate_BusinessScopeOverride(t *testing.T) {
	g := validGraph()
	g.Items[0].BusinessID = "other-biz"
	g.Groups[0].BusinessID = "other-biz"

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("scope override should warn, not block: %v", rep.Errors)
	}
	if !hasIssue(rep.Warnings, "overridden to active catalog") {
		t.Errorf("warnings = %v", rep.Warnings)
	}
	if g.Items[0].BusinessID != testScope || g.Groups[0].BusinessID != testScope {
		t.Error("business_id should be rewritten to the active scope")
	}
}

func TestValidate_MaxSelectExceedsModifiers(t *testing.T) {
	g := validGraph()
	g.Groups[0].MaxSelect = 5

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("should warn, not block: %v", rep.Errors)
	}
	if !hasIssue(rep.Warnings, "exceeds the 1 modifiers declared") {
		t.Errorf("warnings = %v", rep.Warnings)
	}

	// A group with no modifiers at all warns too.
	g = validGraph()
	g.Groups = append(g.Groups, GroupRecord{
		Key: "sauces", Name: "Sauces",
		DisplayType: catalog.DisplayMultiSelect, MaxSelect: 3,
	})
	rep = Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("should warn, not block: %v", rep.Errors)
	}
	if !hasIssue(rep.Warnings, "exceeds the 0 modifiers declared") {
		t.Errorf("warnings = %v", rep.Warnings)
	}
}

func TestValidate_GroupParentItemWarns(t *testing.T) {
	g := validGraph()
	g.Groups[0].ParentItem = "classic"

	rep := Validate(g, testScope)
	if rep.Blocked() {
		t.Fatalf("parent item should warn, not block: %v", rep.Errors)
	}
	if !hasIssue(rep.Warnings, "not auto-linked") {
		t.Errorf("warnings = %v", rep.Warnings)
	}
}

func TestValidate_EmptyGraphPasses(t *testing.T) {
	rep := Validate(&Graph{}, testScope)
	if rep.Blocked() || len(rep.Warnings) != 0 {
		t.Errorf("empty graph report = %+v", rep)
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{File: "items.csv", Line: 3, Entity: EntityItem, Field: "name", Message: "name is required"}
	want := "items.csv:3: item.name: name is required"
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
