package importer

import (
	"testing"
)

// ----------------------------------------------------------------------------
// parseFloat Tests
// ----------------------------------------------------------------------------

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   float64
	}{
		// Valid: Basic numbers
		{
			name:   "positive integer",
			input:  "123",
			wantOK: true,
			want:   123,
		},
		{
			name:   "decimal",
			input:  "9.99",
			wantOK: true,
			want:   9.99,
		},
		{
			name:   "leading decimal point",
			input:  ".99",
			wantOK: true,
			want:   0.99,
		},

		// Valid: Currency symbols
		{
			name:   "dollar sign",
			input:  "$1,234.56",
			wantOK: true,
			want:   1234.56,
		},
		{
			name:   "euro sign",
			input:  "€12.50",
			wantOK: true,
			want:   12.50,
		},
		{
			name:   "pound sign",
			input:  "£7.25",
			wantOK: true,
			want:   7.25,
		},

		// Valid: Accounting negatives
		{
			name:   "parenthesized negative",
			input:  "(1.50)",
			wantOK: true,
			want:   -1.50,
		},
		{
			name:   "parenthesized with currency",
			input:  "($2.00)",
			wantOK: true,
			want:   -2.00,
		},

		// Valid: Surrounding whitespace
		{
			name:   "padded",
			input:  "  4.25  ",
			wantOK: true,
			want:   4.25,
		},

		// Invalid
		{
			name:   "empty string",
			input:  "",
			wantOK: false,
		},
		{
			name:   "non-numeric",
			input:  "free",
			wantOK: false,
		},
		{
			name:   "double decimal",
			input:  "1.2.3",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFloat(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseFloat(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseFloat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// parseBool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"t", true},
		{"yes", true},
		{"Y", true},
		{"1", true},
		{"  true  ", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"maybe", false},
		{"2", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.input); got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// cleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "Burger", "Burger"},
		{"surrounding whitespace", "  Burger  ", "Burger"},
		{"excel formula prefix", `="00123"`, "00123"},
		{"bare equals prefix", "=Burger", "Burger"},
		{"double quotes", `"Burger"`, "Burger"},
		{"single quotes", "'Burger'", "Burger"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCell(tt.input); got != tt.want {
				t.Errorf("cleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// headerIndex Tests
// ----------------------------------------------------------------------------

func TestHeaderIndex(t *testing.T) {
	idx := makeHeaderIndex([]string{"Name", " BASE_PRICE ", "category_name"})

	if !idx.has("name", "base_price", "category_name") {
		t.Error("has() should match case-insensitively after cleanup")
	}
	if idx.has("missing") {
		t.Error("has() should report absent columns")
	}

	row := []string{"  Burger ", "$5.00"}
	if got := idx.cell(row, "name"); got != "Burger" {
		t.Errorf("cell(name) = %q, want %q", got, "Burger")
	}
	// Row shorter than header
	if got := idx.cell(row, "category_name"); got != "" {
		t.Errorf("cell(category_name) on short row = %q, want empty", got)
	}
}

// ----------------------------------------------------------------------------
// sanitizeUTF8 Tests
// ----------------------------------------------------------------------------

func TestSanitizeUTF8(t *testing.T) {
	// Valid input is returned unchanged
	valid := []byte("Café Menu")
	if got := sanitizeUTF8(valid); string(got) != string(valid) {
		t.Errorf("sanitizeUTF8(valid) changed the input: %q", got)
	}

	// Invalid bytes become replacement characters
	invalid := []byte{'a', 0xFF, 'b'}
	got := string(sanitizeUTF8(invalid))
	if got != "a�b" {
		t.Errorf("sanitizeUTF8(invalid) = %q, want %q", got, "a�b")
	}
}

func TestStripBOM(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,price")...)
	if got := string(stripBOM(withBOM)); got != "name,price" {
		t.Errorf("stripBOM = %q, want %q", got, "name,price")
	}
	// No BOM: unchanged
	if got := string(stripBOM([]byte("name"))); got != "name" {
		t.Errorf("stripBOM without BOM = %q, want %q", got, "name")
	}
}
