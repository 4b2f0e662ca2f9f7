package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/albapepper/career-analyzer/internal/config"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq       Op = "="
	OpGT       Op = ">"
	OpGTE      Op = ">="
	OpLT       Op = "<"
	OpLTE      Op = "<="
	OpContains Op = "contains" // case-insensitive substring
	OpNotNull  Op = "not null"
)

// Aggregate is a scalar aggregate function.
type Aggregate string

const (
	AggAvg Aggregate = "AVG"
	AggMin Aggregate = "MIN"
	AggMax Aggregate = "MAX"
	AggSum Aggregate = "SUM"
)

// DisplayNameColumn is a virtual column holding the rendered display name:
// the common name, else "first surname", else "Player #<id>" for placeholder
// first names.
const DisplayNameColumn = "display_name"

// playerColumns is the persisted column order, shared by upserts and scans.
var playerColumns = []string{
	"playerid", "firstname", "surname", "commonname",
	"overallrating", "potential", "age", "height", "weight",
	"preferredposition1", "weakfootabilitytypecode", "skillmoves", "value",
	"nationality", "birthdate",
}

var displayNameExpr = `CASE WHEN firstname LIKE 'Unknown\_%' ESCAPE '\' ` +
	`THEN 'Player #' || CAST(playerid AS TEXT) ` +
	`ELSE COALESCE(NULLIF(commonname, ''), TRIM(firstname || ' ' || surname)) END`

// columnExpr maps a whitelisted column name to its SQL expression.
func columnExpr(name string) (string, error) {
	if name == DisplayNameColumn {
		return displayNameExpr, nil
	}
	for _, c := range playerColumns {
		if c == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Filter is one WHERE predicate. Filters are ANDed.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a read against the players table. The zero value selects
// every player ordered by playerid.
type Query struct {
	filters []Filter
	order   []Order
	limit   int
}

// Select starts an empty query.
func Select() Query { return Query{} }

// Where adds a predicate.
func (q Query) Where(column string, op Op, value any) Query {
	q.filters = append(append([]Filter(nil), q.filters...), Filter{Column: column, Op: op, Value: value})
	return q
}

// OrderBy adds an ascending sort term.
func (q Query) OrderBy(column string) Query {
	q.order = append(append([]Order(nil), q.order...), Order{Column: column})
	return q
}

// OrderByDesc adds a descending sort term.
func (q Query) OrderByDesc(column string) Query {
	q.order = append(append([]Order(nil), q.order...), Order{Column: column, Desc: true})
	return q
}

// Limit caps the number of rows. Zero or negative means no limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Filters returns the query's predicates.
func (q Query) Filters() []Filter { return q.filters }

// --------------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------------

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// escapeLike escapes LIKE metacharacters so the value matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (q Query) where(d dialect) (string, []any, error) {
	if len(q.filters) == 0 {
		return "", nil, nil
	}
	var (
		parts []string
		args  []any
	)
	for _, f := range q.filters {
		expr, err := columnExpr(f.Column)
		if err != nil {
			return "", nil, err
		}
		switch f.Op {
		case OpEq, OpGT, OpGTE, OpLT, OpLTE:
			args = append(args, f.Value)
			parts = append(parts, fmt.Sprintf("%s %s %s", expr, f.Op, d.placeholder(len(args))))
		case OpContains:
			needle := strings.ToLower(fmt.Sprint(f.Value))
			args = append(args, "%"+escapeLike(needle)+"%")
			parts = append(parts, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, expr, d.placeholder(len(args))))
		case OpNotNull:
			parts = append(parts, expr+" IS NOT NULL")
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func (q Query) orderBy() (string, error) {
	terms := make([]string, 0, len(q.order)+1)
	for _, o := range q.order {
		expr, err := columnExpr(o.Column)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, expr+" "+dir)
	}
	// Deterministic tie-break for ranked lists.
	terms = append(terms, "playerid ASC")
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func (q Query) selectSQL(d dialect) (string, []any, error) {
	where, args, err := q.where(d)
	if err != nil {
		return "", nil, err
	}
	order, err := q.orderBy()
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT " + strings.Join(playerColumns, ", ") + " FROM " + config.PlayersTable + where + order
	if q.limit > 0 {
		sql += " LIMIT " + strconv.Itoa(q.limit)
	}
	return sql, args, nil
}

func (q Query) countSQL(d dialect) (string, []any, error) {
	where, args, err := q.where(d)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + config.PlayersTable + where, args, nil
}

func (q Query) scalarSQL(d dialect, agg Aggregate, column string) (string, []any, error) {
	switch agg {
	case AggAvg, AggMin, AggMax, AggSum:
	default:
		return "", nil, fmt.Errorf("unsupported aggregate %q", agg)
	}
	if column == DisplayNameColumn {
		return "", nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, column)
	}
	expr, err := columnExpr(column)
	if err != nil {
		return "", nil, err
	}
	where, args, err := q.where(d)
	if err != nil {
		return "", nil, err
	}
	// CAST keeps the result a float on both dialects.
	sql := fmt.Sprintf("SELECT CAST(%s(%s) AS DOUBLE PRECISION) FROM %s%s", agg, expr, config.PlayersTable, where)
	return sql, args, nil
}
