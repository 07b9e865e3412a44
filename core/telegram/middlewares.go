package telegram

import (
	"github.com/m3rciful/mealbot/core/telegram/middleware"
	"github.com/m3rciful/mealbot/core/telegram/state"
)

// DefaultMiddlewares builds the shared middleware chain. Updates from one user
// are serialized through mgr when it is non-nil.
func DefaultMiddlewares(mgr state.Manager) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	if mgr != nil {
		mws = append(mws, Middleware{Name: "serialize", Use: state.Serialized(mgr)})
	}
	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
