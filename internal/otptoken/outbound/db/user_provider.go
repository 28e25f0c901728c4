package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
)

// UserProvider finds users in a table by matching every credential column.
type UserProvider struct {
	db    *DB
	table string
}

func (s *DB) UserProvider(table string) (*UserProvider, error) {
	t, err := quote(table)
	if err != nil {
		return nil, err
	}
	return &UserProvider{db: s, table: t}, nil
}

// RetrieveByCredentials returns an *entity.GenericUser, or nil when no row
// matches. Keys containing "password" never reach the query, and columns
// containing "password" never reach the user's attributes.
func (p *UserProvider) RetrieveByCredentials(ctx context.Context, credentials map[string]string) (user any, err error) {
	ctx, span := p.db.startSpan(ctx, "UserProvider.RetrieveByCredentials")
	defer func() { p.db.endSpan(span, err) }()

	keys := lo.Filter(lo.Keys(credentials), func(k string, _ int) bool {
		return !isSecret(k)
	})
	if len(keys) == 0 {
		return nil, nil
	}
	slices.Sort(keys)

	where := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		col, err := quote(k)
		if err != nil {
			return nil, goerror.NewInvalidInput(nil, "credentials", fmt.Sprintf("credential %q is not a valid column name", k))
		}
		where = append(where, col+" = ?")
		args = append(args, credentials[k])
	}

	query := p.db.conn.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", p.table, strings.Join(where, " AND ")))

	row := make(map[string]any)
	err = p.db.mapError(p.db.conn.QueryRowxContext(ctx, query, args...).MapScan(row))
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	row = lo.OmitBy(row, func(k string, _ any) bool { return isSecret(k) })

	return &entity.GenericUser{
		Attributes: lo.MapValues(row, func(v any, _ string) string { return cast.ToString(v) }),
	}, nil
}

func isSecret(column string) bool {
	return strings.Contains(strings.ToLower(column), "password")
}
