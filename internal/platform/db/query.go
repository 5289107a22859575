package db

import (
	"fmt"
	"strconv"
	"strings"
)

// ListQuery builds the count and page queries of a filtered listing. Filter
// clauses use ? for their arguments; they are numbered on the way in.
type ListQuery struct {
	table   string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
}

func NewListQuery(table, cols string) *ListQuery {
	return &ListQuery{table: table, cols: cols}
}

// Where adds a clause ANDed with the others.
func (q *ListQuery) Where(clause string, args ...interface{}) *ListQuery {
	var b strings.Builder
	n := 0
	for _, r := range clause {
		if r == '?' && n < len(args) {
			b.WriteString("$" + strconv.Itoa(len(q.args)+n+1))
			n++
			continue
		}
		b.WriteRune(r)
	}
	q.where = append(q.where, b.String())
	q.args = append(q.args, args[:n]...)
	return q
}

// Eq adds column = value when value is non-empty.
func (q *ListQuery) Eq(column, value string) *ListQuery {
	if value == "" {
		return q
	}
	return q.Where(column+" = ?", value)
}

// Search adds a case-insensitive substring match of term against any of
// columns. An empty term adds nothing.
func (q *ListQuery) Search(term string, columns ...string) *ListQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

func (q *ListQuery) OrderBy(orderBy string) *ListQuery {
	q.orderBy = orderBy
	return q
}

func (q *ListQuery) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *ListQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.table, q.whereSQL())
}

func (q *ListQuery) CountArgs() []interface{} {
	return q.args
}

func (q *ListQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s%s", q.cols, q.table, q.whereSQL())
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	n := len(q.args)
	return sql + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

func (q *ListQuery) DataArgs(limit, offset int) []interface{} {
	args := make([]interface{}, 0, len(q.args)+2)
	args = append(args, q.args...)
	return append(args, limit, offset)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
