package postgres

import (
	"fmt"
	"strings"

	"github.com/hongminglow/budget-be/internal/query"
	"github.com/hongminglow/budget-be/internal/storage"
)

var userColumns = map[string]string{
	"id":       "id",
	"username": "username",
	"email":    "email",
}

var allowedOps = map[query.Op]bool{
	query.OpEq:    true,
	query.OpNe:    true,
	query.OpILike: true,
}

// whereClause renders pred as a SQL condition over the whitelisted columns.
// Placeholders are numbered from $1.
func whereClause(pred query.Predicate, columns map[string]string) (string, []any, error) {
	if len(pred.Conditions) == 0 {
		return "", nil, fmt.Errorf("%w: no conditions", storage.ErrInvalidPredicate)
	}
	parts := make([]string, 0, len(pred.Conditions))
	args := make([]any, 0, len(pred.Conditions))
	for _, c := range pred.Conditions {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown field %q", storage.ErrInvalidPredicate, c.Field)
		}
		if !allowedOps[c.Op] {
			return "", nil, fmt.Errorf("%w: unsupported operator %q", storage.ErrInvalidPredicate, c.Op)
		}
		args = append(args, c.Value)
		parts = append(parts, fmt.Sprintf("%s %s $%d", col, c.Op, len(args)))
	}
	return strings.Join(parts, " AND "), args, nil
}
