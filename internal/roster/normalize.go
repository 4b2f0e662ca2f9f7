package roster

import (
	"fmt"

	"github.com/albapepper/career-analyzer/internal/names"
	"github.com/albapepper/career-analyzer/internal/tables"
)

// Result is the output of one normalization pass.
type Result struct {
	Players []Player

	// NoIdentityData is set when the identity table was empty. Players is
	// then empty as well; this is a condition, not an error.
	NoIdentityData bool

	IdentityRows   int
	AttributeRows  int
	WithAttributes int // identity rows that found an attribute row
	Orphaned       int // attribute rows with no identity row (dropped)
	Unnamed        int // players that received the Unknown_ placeholder
	SkippedNoID    int // identity rows without a player id
	Duplicates     int // identity rows superseded by a later row for the same id
}

// Summary returns a human-readable summary of the pass.
func (r Result) Summary() string {
	return fmt.Sprintf(
		"players=%d identity_rows=%d attribute_rows=%d with_attributes=%d orphaned=%d unnamed=%d skipped=%d duplicates=%d",
		len(r.Players), r.IdentityRows, r.AttributeRows,
		r.WithAttributes, r.Orphaned, r.Unnamed, r.SkippedNoID, r.Duplicates,
	)
}

// Normalize merges identity rows and attribute rows into canonical players.
//
// Identity rows are the authoritative roster: attribute rows whose player id
// never appears there are dropped. Attribute rows are indexed by player id
// with the last row winning. Duplicate identity rows collapse to one player:
// the last row wins and keeps the position of the first. Output order follows
// the identity rows, so equal inputs always produce equal outputs.
func Normalize(identityRows, attributeRows []tables.Row, resolver *names.Resolver) Result {
	res := Result{
		IdentityRows:  len(identityRows),
		AttributeRows: len(attributeRows),
	}
	if len(identityRows) == 0 {
		res.NoIdentityData = true
		res.Players = []Player{}
		return res
	}

	attrs := make(map[int]tables.Row, len(attributeRows))
	for _, row := range attributeRows {
		if id, ok := row.Int("playerid"); ok {
			attrs[id] = row
		}
	}

	seen := make(map[int]int, len(identityRows)) // player id -> index in Players
	res.Players = make([]Player, 0, len(identityRows))
	for _, row := range identityRows {
		id, ok := row.Int("playerid")
		if !ok {
			res.SkippedNoID++
			continue
		}

		p := build(id, row, attrs[id], resolver)
		if i, dup := seen[id]; dup {
			res.Duplicates++
			res.Players[i] = p
			continue
		}
		seen[id] = len(res.Players)
		res.Players = append(res.Players, p)
	}

	for _, p := range res.Players {
		if _, found := attrs[p.PlayerID]; found {
			res.WithAttributes++
		}
		if !p.IsNamed() {
			res.Unnamed++
		}
	}

	for id := range attrs {
		if _, ok := seen[id]; !ok {
			res.Orphaned++
		}
	}
	return res
}

func build(id int, identity, attr tables.Row, resolver *names.Resolver) Player {
	resolved := resolver.Resolve(id,
		identity.IntPtr("firstnameid"),
		identity.IntPtr("lastnameid"),
		identity.IntPtr("commonnameid"),
	)

	p := Player{
		PlayerID:   id,
		FirstName:  UnknownName(id),
		CommonName: resolved.CommonName,
	}
	if resolved.FirstName != nil {
		p.FirstName = *resolved.FirstName
	}
	if resolved.Surname != nil {
		p.Surname = *resolved.Surname
	}

	// "overall" is the season table's column; "overallrating" the roster's.
	overall, ok := attr.Int("overall")
	if !ok {
		overall, ok = attr.Int("overallrating")
	}
	if !ok {
		overall = MinRating
	}
	p.OverallRating = floor(overall, MinRating)
	p.Potential = floor(intOr(attr, "potential", MinRating), MinRating)
	p.Age = floor(intOr(attr, "age", MinAge), MinAge)

	p.Height = attr.IntPtr("height")
	p.Weight = attr.IntPtr("weight")
	p.PreferredPosition1 = position(attr["preferredposition1"])
	p.WeakFoot = attr.IntPtr("weakfootabilitytypecode")
	p.SkillMoves = attr.IntPtr("skillmoves")
	p.Value = attr.IntPtr("value")

	p.Nationality = identity.IntPtr("nationality")
	p.Birthdate = identity.IntPtr("birthdate")
	return p
}

func intOr(row tables.Row, col string, fallback int) int {
	if n, ok := row.Int(col); ok {
		return n
	}
	return fallback
}

// floor raises v to min. Values above the documented ceilings pass through.
func floor(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func position(val any) *string {
	if code, ok := tables.ExtractInt(val); ok {
		label := PositionLabel(code)
		return &label
	}
	if s, ok := val.(string); ok && s != "" {
		return &s
	}
	return nil
}
