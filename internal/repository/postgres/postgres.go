package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dakshrana205/StudyNotionnew/pkg/database"
)

// traced runs fn under a database span named op. A missing row is not
// recorded as a span error.
func traced(ctx context.Context, op, query string, fn func(context.Context) error) error {
	ctx, end := database.TraceQuery(ctx, op, query)
	err := fn(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		end(nil)
	} else {
		end(err)
	}
	return err
}
