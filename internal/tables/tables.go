// Package tables defines the table dump produced by the external save parser
// and the scalar accessors used to read it.
//
// The parser emits either one object (table name → rows) or a list of such
// objects, one per embedded database. Both shapes decode into a Dump.
package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Row is one record of a parsed table: column name → scalar (integer,
// string or nil). Rows are never mutated after decoding.
type Row map[string]any

// Dump maps table name to its rows in parser order.
type Dump map[string][]Row

// Rows returns the rows of a table, or nil when the table is absent.
func (d Dump) Rows(table string) []Row {
	return d[table]
}

// Has reports whether the dump contains a non-empty table.
func (d Dump) Has(table string) bool {
	return len(d[table]) > 0
}

// Merge shallow-merges dumps; later dumps overwrite earlier ones on table
// name collision.
func Merge(dumps ...Dump) Dump {
	merged := make(Dump)
	for _, d := range dumps {
		for name, rows := range d {
			merged[name] = rows
		}
	}
	return merged
}

// Decode reads parser JSON output. Numbers are kept as json.Number so large
// integer ids survive without float rounding. Top-level entries that are not
// arrays of row objects (metadata, version stamps) are skipped and logged at
// debug level. In the list shape, later databases overwrite earlier ones on
// key collision before that filtering happens.
func Decode(r io.Reader, logger *slog.Logger) (Dump, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode dump: empty input")
	}

	merged := make(map[string]json.RawMessage)
	if data[0] == '[' {
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return nil, fmt.Errorf("decode dump list: %w", err)
		}
		for i, part := range parts {
			var entries map[string]json.RawMessage
			if err := json.Unmarshal(part, &entries); err != nil {
				logger.Debug("Skipping non-object database in dump", "index", i)
				continue
			}
			for name, raw := range entries {
				merged[name] = raw
			}
		}
	} else if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}

	d := make(Dump, len(merged))
	for name, raw := range merged {
		rows, err := decodeRows(raw)
		if err != nil {
			logger.Debug("Skipping non-table entry in dump", "name", name)
			continue
		}
		d[name] = rows
	}
	return d, nil
}

func decodeRows(raw json.RawMessage) ([]Row, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("not an array")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}
