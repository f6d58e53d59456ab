package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/notargets/femview/neutral"
	"gonum.org/v1/gonum/mat"
)

// TimeRange is inclusive at both ends
type TimeRange struct {
	From, To float64
}

// Query selects samples. Empty filters match everything; Groups matches an
// element in the group, or a node used by one of the group's cells.
type Query struct {
	IDs    []int
	Groups []string
	Fields []string
	Range  *TimeRange
}

type Sample struct {
	Step  int
	Time  float64
	Value float64
}

// Series is the time history of one field at one entity
type Series struct {
	Field    string
	Kind     neutral.EntityKind
	EntityID int
	Samples  []Sample
}

// Dense returns the series as a samples x 2 matrix of (time, value)
func (s Series) Dense() *mat.Dense {
	if len(s.Samples) == 0 {
		return nil
	}
	d := mat.NewDense(len(s.Samples), 2, nil)
	for i, p := range s.Samples {
		d.Set(i, 0, p.Time)
		d.Set(i, 1, p.Value)
	}
	return d
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (q Query) sql() (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT s.field, s.kind, s.entity_id, st.step, st.time, s.value
		FROM samples s JOIN steps st ON st.step = s.step WHERE 1=1`)
	if len(q.IDs) > 0 {
		fmt.Fprintf(&sb, " AND s.entity_id IN (%s)", placeholders(len(q.IDs)))
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if len(q.Fields) > 0 {
		fmt.Fprintf(&sb, " AND s.field IN (%s)", placeholders(len(q.Fields)))
		for _, f := range q.Fields {
			args = append(args, f)
		}
	}
	if len(q.Groups) > 0 {
		fmt.Fprintf(&sb, ` AND EXISTS (SELECT 1 FROM group_entities ge
			WHERE ge.kind = s.kind AND ge.entity_id = s.entity_id AND ge.group_name IN (%s))`,
			placeholders(len(q.Groups)))
		for _, g := range q.Groups {
			args = append(args, g)
		}
	}
	if q.Range != nil {
		sb.WriteString(" AND st.time >= ? AND st.time <= ?")
		args = append(args, q.Range.From, q.Range.To)
	}
	sb.WriteString(" ORDER BY s.field, s.kind, s.entity_id, st.time, st.step")
	return sb.String(), args
}

// Query returns one series per (field, entity), ordered by field, kind and
// entity id, each ordered by time
func (s *Store) Query(ctx context.Context, q Query) ([]Series, error) {
	if q.Range != nil && q.Range.From > q.Range.To {
		return nil, fmt.Errorf("time range [%g, %g] is empty", q.Range.From, q.Range.To)
	}
	query, args := q.sql()
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var result []Series
	for rows.Next() {
		var (
			field    string
			kind, id int
			p        Sample
		)
		if err := rows.Scan(&field, &kind, &id, &p.Step, &p.Time, &p.Value); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		n := len(result)
		if n == 0 || result[n-1].Field != field || result[n-1].Kind != neutral.EntityKind(kind) || result[n-1].EntityID != id {
			result = append(result, Series{Field: field, Kind: neutral.EntityKind(kind), EntityID: id})
			n++
		}
		result[n-1].Samples = append(result[n-1].Samples, p)
	}
	return result, rows.Err()
}
