package strategy

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

type statement struct {
	query string
	args  []any
}

// fakeExecutor records statements and answers lookups from ids.
type fakeExecutor struct {
	execs   []statement
	queries []statement
	execErr func(query string) error
	ids     map[string]string // backward_compatibility -> id
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{ids: make(map[string]string)}
}

func (f *fakeExecutor) Execute(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, statement{query: query, args: args})
	if f.execErr != nil {
		if err := f.execErr(query); err != nil {
			return nil, err
		}
	}
	return fakeResult{}, nil
}

func (f *fakeExecutor) QueryValue(_ context.Context, dest any, query string, args ...any) error {
	f.queries = append(f.queries, statement{query: query, args: args})
	key := fmt.Sprint(args[0])
	id, ok := f.ids[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	reflect.ValueOf(dest).Elem().SetString(id)
	return nil
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }
