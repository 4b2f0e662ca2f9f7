// Package names reconstructs player display names from the save's name
// tables.
//
// Two sources are consulted in priority order:
//  1. editedplayernames: user-authored overrides keyed by player id
//  2. dcplayernames: the shared name-id → string table
//
// An override, when present, is returned verbatim and stops resolution.
package names

import (
	"log/slog"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/tables"
)

// Override is an edited-player name record.
type Override struct {
	FirstName  string
	Surname    string
	CommonName string
	JerseyName string
}

// Resolved holds the resolved names for one player. Nil means unknown.
type Resolved struct {
	FirstName  *string
	Surname    *string
	CommonName *string
}

// Resolver is immutable after Build and safe for concurrent use.
type Resolver struct {
	generic map[int]string
	edited  map[int]Override
}

// Build scans the generic and edited name tables once. A missing table is
// logged and treated as empty.
func Build(dump tables.Dump, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		generic: make(map[int]string),
		edited:  make(map[int]Override),
	}

	if rows := dump.Rows(config.GenericNamesTable); len(rows) == 0 {
		logger.Warn("Name table not found", "table", config.GenericNamesTable)
	} else {
		for _, row := range rows {
			id, ok := row.Int("nameid")
			if !ok {
				continue
			}
			name, _ := row.String("name")
			if name == "" {
				continue
			}
			r.generic[id] = name
		}
	}

	if rows := dump.Rows(config.EditedNamesTable); len(rows) == 0 {
		logger.Warn("Name table not found", "table", config.EditedNamesTable)
	} else {
		for _, row := range rows {
			id, ok := row.Int("playerid")
			if !ok {
				continue
			}
			r.edited[id] = Override{
				FirstName:  row.StringOr("firstname", ""),
				Surname:    row.StringOr("surname", ""),
				CommonName: row.StringOr("commonname", ""),
				JerseyName: row.StringOr("playerjerseyname", ""),
			}
		}
	}

	logger.Info("Loaded name lookups",
		"generic_names", len(r.generic),
		"edited_players", len(r.edited))
	return r
}

// Resolve returns the names for a player. Nil ids and unmatched ids yield nil
// fields.
func (r *Resolver) Resolve(playerID int, firstNameID, lastNameID, commonNameID *int) Resolved {
	if o, ok := r.edited[playerID]; ok {
		return Resolved{
			FirstName:  nonEmpty(o.FirstName),
			Surname:    nonEmpty(o.Surname),
			CommonName: nonEmpty(o.CommonName),
		}
	}
	return Resolved{
		FirstName:  r.lookup(firstNameID),
		Surname:    r.lookup(lastNameID),
		CommonName: r.lookup(commonNameID),
	}
}

// Override returns the edited record for a player, if any.
func (r *Resolver) Override(playerID int) (Override, bool) {
	o, ok := r.edited[playerID]
	return o, ok
}

// Sizes returns the number of generic names and edited players loaded.
func (r *Resolver) Sizes() (generic, edited int) {
	return len(r.generic), len(r.edited)
}

// lookup treats name id 0 as "no name", the save format's empty slot.
func (r *Resolver) lookup(id *int) *string {
	if id == nil || *id == 0 {
		return nil
	}
	name, ok := r.generic[*id]
	if !ok {
		return nil
	}
	return &name
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
