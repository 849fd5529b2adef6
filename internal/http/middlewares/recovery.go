package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the standard 500 envelope.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", recovered,
			"route", c.FullPath(),
			"request_id", c.GetString(CtxRequestID),
		)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
	})
}
