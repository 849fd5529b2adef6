package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ProfileEditor interface {
	EditProfile(ctx context.Context, userID int64, req user.EditUserRequest) (user.User, error)
}

type UsersHandler struct {
	svc ProfileEditor
}

func NewUsersHandler(svc ProfileEditor) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// Identify returns the authenticated caller as loaded by the guard.
func (h *UsersHandler) Identify(ctx *gin.Context, caller user.User) {
	ctx.JSON(http.StatusOK, caller)
}

func (h *UsersHandler) Edit(ctx *gin.Context, caller user.User) {
	var req user.EditUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.IsEmpty() {
		ctx.JSON(http.StatusOK, caller)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.EditProfile(cctx, caller.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondForbidden(ctx, "credentials_taken", "Credentials taken")
		case errors.Is(err, user.ErrNotFound):
			// deleted after the guard loaded it
			RespondUnauthorized(ctx, "Invalid or expired access token")
		default:
			slog.Default().ErrorContext(cctx, "edit user failed", "err", err)
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, u)
}
