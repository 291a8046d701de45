package importer

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// buildZip assembles an in-memory zip archive from name/content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// ----------------------------------------------------------------------------
// Single-file parsing
// ----------------------------------------------------------------------------

func TestParse_CategoriesFile(t *testing.T) {
	data := []byte("name,description,sort_order,is_active\n" +
		"Burgers,Grilled to order,1,true\n" +
		"Drinks,,2,\n")

	g, err := Parse(data, "categories.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(g.Categories))
	}
	c := g.Categories[0]
	if c.Name != "Burgers" || c.SortOrder != 1 || !c.IsActive {
		t.Errorf("first category = %+v", c)
	}
	if c.File != "categories.csv" || c.Line != 2 {
		t.Errorf("row ref = %s:%d, want categories.csv:2", c.File, c.Line)
	}
	// Blank is_active defaults to true
	if !g.Categories[1].IsActive {
		t.Error("blank is_active should default to true")
	}
}

func TestParse_ItemsFile(t *testing.T) {
	data := []byte("item_key,name,category_name,base_price,is_sizeable,default_size_code\n" +
		"burger-classic,Classic Burger,Burgers,$8.50,yes,\n" +
		",Cola,Drinks,2.00,true,L\n")

	g, err := Parse(data, "items.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(g.Items))
	}
	first := g.Items[0]
	if first.Key != "burger-classic" || first.BasePrice != 8.50 || !first.IsSizeable {
		t.Errorf("first item = %+v", first)
	}
	// Missing item_key falls back to name
	if g.Items[1].Key != "Cola" {
		t.Errorf("key fallback = %q, want %q", g.Items[1].Key, "Cola")
	}
	if g.Items[1].DefaultSizeCode != "L" {
		t.Errorf("default size code = %q, want %q", g.Items[1].DefaultSizeCode, "L")
	}
}

func TestParse_GroupFileWithTiers(t *testing.T) {
	data := []byte("group_key,name,display_type,min_select,max_select,quantity_levels,prices_by_size\n" +
		`toppings,Toppings,multi_select,0,3,"[{""quantity"":1,""price"":0.5}]","[{""size_code"":""L"",""price"":1.0}]"` + "\n")

	g, err := Parse(data, "modifier_groups.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(g.Groups))
	}
	grp := g.Groups[0]
	if grp.Key != "toppings" || grp.DisplayType != "multi_select" || grp.MaxSelect != 3 {
		t.Errorf("group = %+v", grp)
	}
	if len(grp.QuantityLevels) != 1 || grp.QuantityLevels[0].Price != 0.5 {
		t.Errorf("quantity levels = %+v", grp.QuantityLevels)
	}
	if len(grp.SizePrices) != 1 || grp.SizePrices[0].SizeCode != "L" {
		t.Errorf("size prices = %+v", grp.SizePrices)
	}
}

func TestParse_SkipsLeadingBlankRows(t *testing.T) {
	data := []byte("\n,,\nname,description\nBurgers,\n")

	g, err := Parse(data, "categories.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Categories) != 1 {
		t.Fatalf("categories = %d, want 1", len(g.Categories))
	}
	// Header was on line 3, so the data row is line 4
	if g.Categories[0].Line != 4 {
		t.Errorf("row line = %d, want 4", g.Categories[0].Line)
	}
}

func TestParse_BlankRowBetweenDataRows(t *testing.T) {
	data := []byte("name,description\nBurgers,\n\nDrinks,\n")

	g, err := Parse(data, "categories.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(g.Categories))
	}
	// The blank physical line 3 shifts Drinks to line 4.
	if g.Categories[0].Line != 2 || g.Categories[1].Line != 4 {
		t.Errorf("row lines = %d, %d, want 2, 4",
			g.Categories[0].Line, g.Categories[1].Line)
	}
}

func TestParse_BOMAndExcelArtifacts(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte("name,description\n=\"Burgers\",test\n")...)

	g, err := Parse(data, "categories.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.Categories[0].Name != "Burgers" {
		t.Errorf("name = %q, want %q", g.Categories[0].Name, "Burgers")
	}
}

// ----------------------------------------------------------------------------
// Generic type-column encoding
// ----------------------------------------------------------------------------

func TestParse_GenericEncoding(t *testing.T) {
	data := []byte("type,name,parent,price\n" +
		"CATEGORY,Drinks,,\n" +
		"ITEM,Cola,Drinks,2.50\n" +
		"SIZE,L,Cola,3.00\n" +
		"MOD_GROUP,Ice Level,,\n" +
		"MODIFIER,No Ice,Ice Level,\n")

	g, err := Parse(data, "menu.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g.Categories) != 1 || len(g.Items) != 1 || len(g.Sizes) != 1 ||
		len(g.Groups) != 1 || len(g.Modifiers) != 1 {
		t.Fatalf("graph counts = %d/%d/%d/%d/%d, want 1 each",
			len(g.Categories), len(g.Items), len(g.Sizes), len(g.Groups), len(g.Modifiers))
	}
	if g.Items[0].Category != "Drinks" {
		t.Errorf("item category = %q, want %q", g.Items[0].Category, "Drinks")
	}
	// SIZE rows use the name as code and the parent as owning item
	if g.Sizes[0].Code != "L" || g.Sizes[0].ItemKey != "Cola" {
		t.Errorf("size = %+v", g.Sizes[0])
	}
	if g.Modifiers[0].GroupKey != "Ice Level" {
		t.Errorf("modifier group key = %q, want %q", g.Modifiers[0].GroupKey, "Ice Level")
	}
}

func TestParse_GenericUnknownType(t *testing.T) {
	data := []byte("type,name\nDESSERT,Cake\n")

	_, err := Parse(data, "menu.csv")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Parse() error = %v, want *FormatError", err)
	}
	if fe.Line != 2 {
		t.Errorf("error line = %d, want 2", fe.Line)
	}
}

// ----------------------------------------------------------------------------
// Archive parsing
// ----------------------------------------------------------------------------

func TestParse_ZipArchive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"categories.csv":       "name\nBurgers\n",
		"items.csv":            "name,category_name,base_price\nClassic,Burgers,8.00\n",
		"__MACOSX/._items.csv": "junk",
		".hidden.csv":          "junk",
		"notes.txt":            "not tabular",
	})

	g, err := Parse(data, "upload.zip")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g.Categories) != 1 || len(g.Items) != 1 {
		t.Fatalf("counts = %d categories, %d items; want 1 each", len(g.Categories), len(g.Items))
	}
	if len(g.Files) != 2 {
		t.Errorf("files = %v, want 2 entries", g.Files)
	}
}

func TestParse_ZipMemberError(t *testing.T) {
	data := buildZip(t, map[string]string{
		"categories.csv": "name\nBurgers\n",
		"data.csv":       "foo,bar\n1,2\n",
	})

	_, err := Parse(data, "upload.zip")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Parse() error = %v, want *FormatError", err)
	}
	if fe.File != "data.csv" {
		t.Errorf("error file = %q, want data.csv", fe.File)
	}
}

// ----------------------------------------------------------------------------
// Error cases
// ----------------------------------------------------------------------------

func TestParse_EmptyInput(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("   \n  ")} {
		if _, err := Parse(data, "empty.csv"); !errors.Is(err, ErrEmptyImport) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyImport", data, err)
		}
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	data := []byte("name,description\n")
	if _, err := Parse(data, "categories.csv"); !errors.Is(err, ErrEmptyImport) {
		t.Errorf("Parse(header only) error = %v, want ErrEmptyImport", err)
	}
}

func TestParse_EmptyArchive(t *testing.T) {
	data := buildZip(t, map[string]string{"readme.txt": "nothing tabular"})
	if _, err := Parse(data, "upload.zip"); !errors.Is(err, ErrEmptyImport) {
		t.Errorf("Parse(empty archive) error = %v, want ErrEmptyImport", err)
	}
}

func TestParse_UnknownKind(t *testing.T) {
	// No recognizable filename and no signature columns
	data := []byte("foo,bar\n1,2\n")

	_, err := Parse(data, "data.csv")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Parse() error = %v, want *FormatError", err)
	}
	if !strings.Contains(fe.Msg, "entity kind") {
		t.Errorf("error msg = %q", fe.Msg)
	}
}

// ----------------------------------------------------------------------------
// Kind inference
// ----------------------------------------------------------------------------

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		header   []string
		want     entityKind
	}{
		// Filename wins
		{"overrides by filename", "item_overrides.csv", []string{"x"}, kindOverride},
		{"modifier groups by filename", "modifier_groups.csv", []string{"x"}, kindGroup},
		{"modifiers by filename", "modifiers.csv", []string{"x"}, kindModifier},
		{"sizes by filename", "sizes.csv", []string{"x"}, kindSize},
		{"items by filename", "menu_items.csv", []string{"x"}, kindItem},
		{"categories by filename", "category_list.csv", []string{"x"}, kindCategory},

		// Column signatures when the filename is opaque
		{"override columns", "a.csv", []string{"item_key", "group_key", "modifier_key"}, kindOverride},
		{"modifier columns", "a.csv", []string{"group_key", "modifier_key", "name"}, kindModifier},
		{"group columns", "a.csv", []string{"name", "display_type"}, kindGroup},
		{"size columns", "a.csv", []string{"size_code", "price"}, kindSize},
		{"item columns", "a.csv", []string{"name", "base_price"}, kindItem},
		{"bare name column", "a.csv", []string{"name"}, kindCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := inferKind(tt.filename, makeHeaderIndex(tt.header))
			if !ok {
				t.Fatalf("inferKind(%q, %v) not ok", tt.filename, tt.header)
			}
			if got != tt.want {
				t.Errorf("inferKind(%q, %v) = %d, want %d", tt.filename, tt.header, got, tt.want)
			}
		})
	}
}
