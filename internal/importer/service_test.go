package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/menuforge/backend/internal/catalog"
)

func TestService_ImportArchive(t *testing.T) {
	store := catalog.NewMemStore()
	svc := NewService(store)

	data := buildZip(t, map[string]string{
		"categories.csv": "name,sort_order\nBurgers,1\nDrinks,2\n",
		"items.csv": "item_key,name,category_name,base_price\n" +
			"classic,Classic,Burgers,8.50\n" +
			"cola,Cola,Drinks,2.00\n",
		"sizes.csv": "size_code,name,price,item_key,is_default\n" +
			"S,Small,0,,\n" +
			"L,Large,1.00,cola,true\n",
	})

	summary, err := svc.Import(context.Background(), data, "menu.zip", testScope)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Result == nil {
		t.Fatalf("import blocked: %v", summary.Report.Errors)
	}
	if summary.Result.Categories.Created != 2 || summary.Result.Items.Created != 2 {
		t.Errorf("result = %+v", summary.Result)
	}
	if len(summary.Files) != 3 {
		t.Errorf("files = %v, want 3", summary.Files)
	}

	counts := store.Counts()
	if counts["categories"] != 2 || counts["items"] != 2 || counts["sizes"] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestService_ImportGenericEncoding(t *testing.T) {
	store := catalog.NewMemStore()
	svc := NewService(store)

	data := []byte("type,name,parent,price\n" +
		"CATEGORY,Drinks,,\n" +
		"ITEM,Cola,Drinks,2.50\n" +
		"SIZE,L,Cola,3.00\n")

	summary, err := svc.Import(context.Background(), data, "menu.csv", testScope)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Result == nil {
		t.Fatalf("import blocked: %v", summary.Report.Errors)
	}

	counts := store.Counts()
	if counts["categories"] != 1 || counts["items"] != 1 || counts["sizes"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestService_GenericDefaultSizeOutOfOrder(t *testing.T) {
	store := catalog.NewMemStore()
	svc := NewService(store)
	ctx := context.Background()

	// Size rows precede the item they belong to, and the item carries no
	// category at all. Natural-key resolution must not depend on row
	// order, and an uncategorized item still commits.
	data := []byte("type,name,parent,is_default\n" +
		"SIZE,S,Cola,\n" +
		"SIZE,L,Cola,true\n" +
		"ITEM,Cola,,\n")

	summary, err := svc.Import(ctx, data, "menu.csv", testScope)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Result == nil {
		t.Fatalf("import blocked: %v", summary.Report.Errors)
	}

	repos := store.Snapshot()
	item, _ := repos.Items.FindByName(ctx, testScope, "", "Cola")
	large, _ := repos.Sizes.FindByCode(ctx, testScope, "L")
	small, _ := repos.Sizes.FindByCode(ctx, testScope, "S")

	if item.DefaultSizeID == nil {
		t.Fatal("item should carry a default size")
	}
	if *item.DefaultSizeID != large.ID || *item.DefaultSizeID == small.ID {
		t.Errorf("default size = %s, want L (%s), not S (%s)", *item.DefaultSizeID, large.ID, small.ID)
	}
}

func TestService_BlockedImportWritesNothing(t *testing.T) {
	store := catalog.NewMemStore()
	svc := NewService(store)

	// Item references a category the upload never declares
	data := []byte("item_key,name,category_name,base_price\n" +
		"classic,Classic,Burgers,8.50\n")

	summary, err := svc.Import(context.Background(), data, "items.csv", testScope)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Result != nil {
		t.Fatal("blocked import should carry no result")
	}
	if !summary.Report.Blocked() {
		t.Fatal("report should carry blocking errors")
	}

	for kind, count := range store.Counts() {
		if count != 0 {
			t.Errorf("%s count = %d, want 0", kind, count)
		}
	}
}

func TestService_ValidateDryRun(t *testing.T) {
	store := catalog.NewMemStore()
	svc := NewService(store)

	data := []byte("name\nBurgers\n")
	summary, err := svc.Validate(context.Background(), data, "categories.csv", testScope)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if summary.Report.Blocked() {
		t.Errorf("report = %+v", summary.Report)
	}

	// Dry run never writes
	if count := store.Counts()["categories"]; count != 0 {
		t.Errorf("categories count = %d, want 0", count)
	}
}

func TestService_FormatErrorPropagates(t *testing.T) {
	svc := NewService(catalog.NewMemStore())

	_, err := svc.Import(context.Background(), []byte("foo,bar\n1,2\n"), "data.csv", testScope)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Import() error = %v, want *FormatError", err)
	}

	_, err = svc.Import(context.Background(), nil, "empty.csv", testScope)
	if !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("Import(empty) error = %v, want ErrEmptyImport", err)
	}
}
