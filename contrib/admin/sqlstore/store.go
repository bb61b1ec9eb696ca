package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/contrib/admin"
	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql"
)

var rules = inflect.NewDefaultRuleset()

// Model maps an admin model onto a table.
type Model struct {
	// Name is the model name, e.g. "Customer".
	Name string
	// Table defaults to the snake-cased plural of Name ("customers").
	Table string
	// PK defaults to "id".
	PK string
	// Label is the column used as the display label. When empty, records
	// are labelled "<Name> object (<pk>)".
	Label string
}

// Store implements admin.Searcher over one table.
type Store struct {
	drv   dialect.ExecQuerier
	d     string
	model Model
}

// New returns a store for the model. drv is usually a *sql.Driver or a
// *sql.DebugDriver.
func New(drv dialect.Driver, m Model) (*Store, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("sqlstore: missing model name")
	}
	if m.Table == "" {
		m.Table = rules.Underscore(rules.Pluralize(m.Name))
	}
	if m.PK == "" {
		m.PK = "id"
	}
	for _, ident := range []string{m.Table, m.PK, m.Label} {
		if ident != "" && !sql.IsValidIdentifier(ident) {
			return nil, fmt.Errorf("sqlstore: invalid identifier %q", ident)
		}
	}
	return &Store{drv: drv, d: drv.Dialect(), model: m}, nil
}

// Model returns the resolved model, with defaults applied.
func (s *Store) Model() Model {
	return s.model
}

// Record is a table row.
type Record struct {
	model  Model
	Values map[string]any
}

// PK returns the primary key value.
func (r *Record) PK() any {
	return r.Values[r.model.PK]
}

// String returns the label of the record.
func (r *Record) String() string {
	if r.model.Label != "" {
		if v, ok := r.Values[r.model.Label]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("%s object (%v)", r.model.Name, r.PK())
}

// Get returns the single row whose field equals value. The field "pk" (or
// "") stands for the primary key.
func (s *Store) Get(ctx context.Context, field string, value any) (any, error) {
	if field == "" || field == "pk" {
		field = s.model.PK
	}
	if !sql.IsValidIdentifier(field) {
		return nil, fmt.Errorf("sqlstore: invalid identifier %q", field)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s LIMIT 2",
		sql.Quote(s.d, s.model.Table), sql.Quote(s.d, field), sql.Placeholder(s.d, 1))
	records, err := s.query(ctx, query, []any{value})
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, veloxext.NewNotFoundErrorWithID(s.model.Name, value)
	case 1:
		return records[0], nil
	default:
		return nil, veloxext.NewNotSingularError(s.model.Name)
	}
}

// Search returns the rows where every word matches at least one field,
// ordered by primary key.
func (s *Store) Search(ctx context.Context, q admin.SearchQuery) ([]admin.Match, error) {
	if len(q.Fields) == 0 || len(q.Words) == 0 {
		return nil, nil
	}
	var (
		b    strings.Builder
		args []any
	)
	fmt.Fprintf(&b, "SELECT * FROM %s WHERE ", sql.Quote(s.d, s.model.Table))
	for i, word := range q.Words {
		if i > 0 {
			b.WriteString(" AND ")
		}
		word = strings.ToLower(word)
		b.WriteString("(")
		for j, f := range q.Fields {
			if !sql.IsValidIdentifier(f.Name) {
				return nil, fmt.Errorf("sqlstore: invalid identifier %q", f.Name)
			}
			if j > 0 {
				b.WriteString(" OR ")
			}
			col := "LOWER(" + sql.Quote(s.d, f.Name) + ")"
			ph := sql.Placeholder(s.d, len(args)+1)
			switch f.Op {
			case admin.OpExact:
				fmt.Fprintf(&b, "%s = %s", col, ph)
				args = append(args, word)
			case admin.OpStartsWith:
				fmt.Fprintf(&b, "%s LIKE %s ESCAPE '!'", col, ph)
				args = append(args, sql.EscapeLike(word)+"%")
			default:
				fmt.Fprintf(&b, "%s LIKE %s ESCAPE '!'", col, ph)
				args = append(args, "%"+sql.EscapeLike(word)+"%")
			}
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " ORDER BY %s", sql.Quote(s.d, s.model.PK))
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	records, err := s.query(ctx, b.String(), args)
	if err != nil {
		return nil, err
	}
	matches := make([]admin.Match, len(records))
	for i, r := range records {
		matches[i] = admin.Match{PK: r.PK(), Label: r.String()}
	}
	return matches, nil
}

func (s *Store) query(ctx context.Context, query string, args []any) ([]*Record, error) {
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("sqlstore: %s: %w", s.model.Name, err)
	}
	maps, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %s: %w", s.model.Name, err)
	}
	records := make([]*Record, len(maps))
	for i, m := range maps {
		records[i] = &Record{model: s.model, Values: m}
	}
	return records, nil
}

var _ admin.Searcher = (*Store)(nil)
