package integration_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/geocoder89/bookmarkhub/internal/auth"
	"github.com/geocoder89/bookmarkhub/internal/cache"
	apphttp "github.com/geocoder89/bookmarkhub/internal/http"
	"github.com/geocoder89/bookmarkhub/internal/http/handlers"
	"github.com/geocoder89/bookmarkhub/internal/service/account"
	"github.com/geocoder89/bookmarkhub/internal/service/bookmarks"
	"github.com/gin-gonic/gin"
)

const testSecret = "integration-secret"

// backend is the part of a store the router wiring needs.
type backend struct {
	users     account.UserStore
	bookmarks bookmarks.Repository
	ping      func(context.Context) error
}

func newTestRouter(b backend, tokens *auth.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := account.NewService(b.users, tokens, log)
	marks := bookmarks.NewService(b.bookmarks, log, bookmarks.WithCache(cache.New(time.Minute)))

	return apphttp.NewRouter(apphttp.Deps{
		Log:       log,
		Env:       "test",
		Accounts:  accounts,
		Bookmarks: marks,
		Tokens:    tokens,
		Users:     b.users,
		Checks: map[string]handlers.Pinger{
			"store": b.ping,
		},
		MaxBodyBytes: 1 << 20,
	})
}
