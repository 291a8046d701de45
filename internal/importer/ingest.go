package importer

// ingest.go turns raw uploaded bytes into the canonical import graph.
//
// The upload is either a single tabular file or a zip archive of tabular
// files. Every file auto-detects its own encoding: a header carrying both
// "type" and "name" columns selects the generic type-column encoding;
// anything else is an entity-specific file whose kind is inferred from the
// filename, falling back to column-signature heuristics. Partial graphs
// from archive members are concatenated per entity kind without
// deduplication; duplicate and missing-reference detection belongs to the
// validator, never to the ingestor.

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path"
	"strings"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// Parse converts an upload into a canonical import graph. It fails with a
// *FormatError for unparseable input and ErrEmptyImport when the upload
// holds no tabular data at all.
func Parse(data []byte, filename string) (*Graph, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyImport
	}

	g := &Graph{}
	if isArchive(data, filename) {
		if err := parseArchive(data, filename, g); err != nil {
			return nil, err
		}
	} else {
		part, err := parseFile(data, path.Base(filename))
		if err != nil {
			return nil, err
		}
		g.merge(part)
	}

	if g.Empty() {
		return nil, ErrEmptyImport
	}
	return g, nil
}

func isArchive(data []byte, filename string) bool {
	if bytes.HasPrefix(data, zipMagic) {
		return true
	}
	return strings.EqualFold(path.Ext(filename), ".zip")
}

func parseArchive(data []byte, filename string, g *Graph) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &FormatError{File: filename, Msg: "unreadable archive", Err: err}
	}

	for _, member := range zr.File {
		base := path.Base(member.Name)
		if member.FileInfo().IsDir() ||
			strings.HasPrefix(member.Name, "__MACOSX/") ||
			strings.HasPrefix(base, ".") ||
			!strings.EqualFold(path.Ext(base), ".csv") {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return &FormatError{File: base, Msg: "unreadable archive member", Err: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return &FormatError{File: base, Msg: "unreadable archive member", Err: err}
		}

		part, err := parseFile(content, base)
		if err != nil {
			return err
		}
		g.merge(part)
	}
	return nil
}

// tableRow is one non-empty data row together with the physical line it
// occupied in the source file. Physical lines survive blank rows and
// multi-line quoted fields, so error messages point at the file as the
// author sees it.
type tableRow struct {
	line  int
	cells []string
}

// parseFile parses one tabular file into a partial graph. A file with no
// data rows contributes nothing; the top-level emptiness check is in Parse.
func parseFile(data []byte, name string) (*Graph, error) {
	data = sanitizeUTF8(stripBOM(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// The header is the first non-empty row.
	headerLine := 0
	var header []string
	var rows []tableRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, formatErrorf(name, pe.Line, "malformed CSV: %v", pe.Err)
			}
			return nil, &FormatError{File: name, Msg: "malformed CSV", Err: err}
		}
		line, _ := r.FieldPos(0)
		if isEmptyRow(record) {
			continue
		}
		if header == nil {
			header = record
			headerLine = line
			continue
		}
		rows = append(rows, tableRow{line: line, cells: record})
	}
	if header == nil {
		return &Graph{}, nil
	}

	idx := makeHeaderIndex(header)
	g := &Graph{Files: []string{name}}

	if idx.has("type", "name") {
		if err := parseGenericRows(g, rows, idx, name); err != nil {
			return nil, err
		}
		return g, nil
	}

	kind, ok := inferKind(name, idx)
	if !ok {
		return nil, formatErrorf(name, headerLine, "cannot determine entity kind from filename or columns")
	}
	if err := parseEntityRows(g, kind, rows, idx, name); err != nil {
		return nil, err
	}
	return g, nil
}

type entityKind int

const (
	kindCategory entityKind = iota
	kindItem
	kindSize
	kindGroup
	kindModifier
	kindOverride
)

// inferKind determines an entity-specific file's kind, first from filename
// substrings, then from column signatures when the filename is ambiguous.
func inferKind(name string, idx headerIndex) (entityKind, bool) {
	base := strings.ToLower(path.Base(name))
	switch {
	case strings.Contains(base, "override"):
		return kindOverride, true
	case strings.Contains(base, "modifier") && strings.Contains(base, "group"):
		return kindGroup, true
	case strings.Contains(base, "group"):
		return kindGroup, true
	case strings.Contains(base, "modifier"):
		return kindModifier, true
	case strings.Contains(base, "size"):
		return kindSize, true
	case strings.Contains(base, "item"):
		return kindItem, true
	case strings.Contains(base, "categor"):
		return kindCategory, true
	}

	switch {
	case idx.has("item_key", "group_key", "modifier_key"):
		return kindOverride, true
	case idx.has("group_key", "modifier_key", "name"):
		return kindModifier, true
	case idx.has("group_key") || idx.has("display_type") || idx.has("min_select"):
		return kindGroup, true
	case idx.has("size_code"):
		return kindSize, true
	case idx.has("base_price") || idx.has("category_name") || idx.has("category_id") || idx.has("item_key"):
		return kindItem, true
	case idx.has("name"):
		return kindCategory, true
	}
	return 0, false
}

func parseEntityRows(g *Graph, kind entityKind, rows []tableRow, idx headerIndex, file string) error {
	for _, row := range rows {
		ref := RowRef{File: file, Line: row.line}
		r := &rowReader{row: row.cells, idx: idx, ref: ref}

		switch kind {
		case kindCategory:
			g.Categories = append(g.Categories, readCategory(r))
		case kindItem:
			g.Items = append(g.Items, readItem(r))
		case kindSize:
			g.Sizes = append(g.Sizes, readSize(r))
		case kindGroup:
			g.Groups = append(g.Groups, readGroup(r))
		case kindModifier:
			g.Modifiers = append(g.Modifiers, readModifier(r))
		case kindOverride:
			g.Overrides = append(g.Overrides, readOverride(r))
		}

		if r.err != nil {
			return r.err
		}
	}
	return nil
}
