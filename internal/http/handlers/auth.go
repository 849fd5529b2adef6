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

type Authenticator interface {
	Register(ctx context.Context, req user.CredentialsRequest) (user.User, error)
	Login(ctx context.Context, req user.CredentialsRequest) (string, error)
}

type AuthHandler struct {
	svc Authenticator
}

func NewAuthHandler(svc Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.CredentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// hashing dominates, keep room for it
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	u, err := h.svc.Register(cctx, req)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondForbidden(ctx, "credentials_taken", "Credentials taken")
			return
		}

		slog.Default().ErrorContext(cctx, "register failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.CredentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	token, err := h.svc.Login(cctx, req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			RespondForbidden(ctx, "credentials_incorrect", "Credentials incorrect")
			return
		}

		slog.Default().ErrorContext(cctx, "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}
