package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/bookmarkhub/internal/actorctx"
	"github.com/geocoder89/bookmarkhub/internal/auth"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/geocoder89/bookmarkhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}
	return nil, errors.New("no verifier configured")
}

type fakeUsers struct {
	getFn func(ctx context.Context, id int64) (user.User, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func claimsFor(sub string) *auth.Claims {
	return &auth.Claims{
		Email:            "sam@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}
}

func decodeErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error.Code
}

func TestGuardRequireAuth(t *testing.T) {
	validToken := func(token string) (*auth.Claims, error) {
		if token != "good" {
			return nil, auth.ErrInvalidToken
		}
		return claimsFor("7"), nil
	}

	tests := []struct {
		name       string
		header     string
		verifyFn   func(string) (*auth.Claims, error)
		getFn      func(context.Context, int64) (user.User, error)
		wantStatus int
	}{
		{
			name:       "missing header",
			header:     "",
			verifyFn:   validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			verifyFn:   validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer",
			header:     "Bearer   ",
			verifyFn:   validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			header:     "Bearer bad",
			verifyFn:   validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "non numeric subject",
			header: "Bearer good",
			verifyFn: func(string) (*auth.Claims, error) {
				return claimsFor("abc"), nil
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "user no longer exists",
			header:   "Bearer good",
			verifyFn: validToken,
			getFn: func(context.Context, int64) (user.User, error) {
				return user.User{}, user.ErrNotFound
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "success",
			header:   "Bearer good",
			verifyFn: validToken,
			getFn: func(_ context.Context, id int64) (user.User, error) {
				return user.User{ID: id, Email: "sam@example.com"}, nil
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := middlewares.NewGuard(&fakeVerifier{verifyFn: tt.verifyFn}, &fakeUsers{getFn: tt.getFn})

			r := gin.New()
			r.GET("/me", guard.RequireAuth(), middlewares.WithCaller(func(c *gin.Context, caller user.User) {
				ctxID, ok := actorctx.UserIDFrom(c.Request.Context())
				if !ok || ctxID != caller.ID {
					t.Errorf("request context user id = %d, %v; want %d", ctxID, ok, caller.ID)
				}
				c.JSON(http.StatusOK, caller)
			}))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d, body=%s", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantStatus == http.StatusUnauthorized {
				if code := decodeErrorCode(t, w.Body); code != "unauthorized" {
					t.Fatalf("expected code unauthorized, got %q", code)
				}
				return
			}

			var got user.User
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode user: %v", err)
			}
			if got.ID != 7 {
				t.Fatalf("expected caller id 7, got %d", got.ID)
			}
		})
	}
}

func TestWithCallerWithoutGuard(t *testing.T) {
	r := gin.New()
	r.GET("/me", middlewares.WithCaller(func(c *gin.Context, _ user.User) {
		c.Status(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"post json", http.MethodPost, "application/json", http.StatusOK},
		{"patch json with charset", http.MethodPatch, "application/json; charset=utf-8", http.StatusOK},
		{"post form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"post without content type", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"delete passes", http.MethodDelete, "", http.StatusOK},
		{"get passes", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.RequireJSON())
			r.Handle(tt.method, "/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middlewares.CtxRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	if w.Body.String() != "abc-123" {
		t.Fatalf("expected request id in context, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"https://app.example.com"}))
	r.PATCH("/bookmarks/1", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/bookmarks/1", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("PATCH missing from allowed methods: %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	req = httptest.NewRequest(http.MethodOptions, "/bookmarks/1", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected CORS grant for unknown origin")
	}
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w.Body); code != "internal_error" {
		t.Fatalf("expected internal_error, got %q", code)
	}
}
