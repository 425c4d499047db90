package repository

import (
	"context"
	"fmt"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// ListQuery is a generic equality filter with ordering and paging.
// Only whitelisted columns may appear in Where and OrderBy.
type ListQuery struct {
	Where   map[string]any
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

func (q ListQuery) limit() int {
	switch {
	case q.Limit <= 0:
		return defaultListLimit
	case q.Limit > maxListLimit:
		return maxListLimit
	}
	return q.Limit
}

// apply adds q to tx, rejecting unknown columns.
func (q ListQuery) apply(tx *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	for col, v := range q.Where {
		if !columns[col] {
			return nil, models.NewValidationError(fmt.Sprintf("cannot filter on %q", col))
		}
		tx = tx.Where(col+" = ?", v)
	}
	order := q.OrderBy
	if order == "" {
		order = "created_at"
	}
	if !columns[order] {
		return nil, models.NewValidationError(fmt.Sprintf("cannot order by %q", order))
	}
	dir := "asc"
	if q.Desc {
		dir = "desc"
	}
	tx = tx.Order(order + " " + dir).Limit(q.limit())
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx, nil
}

// table is the shared handle of every collection repository.
type table struct {
	db     *gorm.DB
	name   string
	logger *observability.RepoLogger
}

func newTable(db *gorm.DB, name string) table {
	return table{db: db, name: name, logger: observability.NewRepoLogger(name)}
}

func (t table) q(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.name)
}

// likePattern escapes s for use in a LIKE clause matching it anywhere.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
