package composables

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/evaldesk/evaldesk/pkg/constants"
	"github.com/evaldesk/evaldesk/pkg/types"
)

var (
	ErrNoLogger = errors.New("logger not found")
	ErrNoUser   = errors.New("user not found in context")
)

// UseLogger returns the request-scoped logger placed in the context by the
// logging middleware. Panics when absent: every request path installs one.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic(ErrNoLogger)
	}
	return logger.(*logrus.Entry)
}

func TryUseLogger(ctx context.Context) (*logrus.Entry, bool) {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	return logger, ok
}

func WithUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, user)
}

func UseUser(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(constants.UserKey).(types.User)
	if !ok {
		return types.User{}, ErrNoUser
	}
	return user, nil
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// UsePaginated parses limit/offset query parameters with sane bounds.
func UsePaginated(r *http.Request) PaginationParams {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}
}
