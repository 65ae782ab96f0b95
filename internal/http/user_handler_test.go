package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/service"
)

// stubAuth inyecta claims directamente, sin pasar por el middleware.
func stubAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(authClaimsKey, service.Claims{UserID: userID})
		c.Next()
	}
}

func newProfileTestServer(t *testing.T) (*gin.Engine, *mockUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users := newMockUserRepo()
	if err := users.Create(context.Background(), domain.User{
		ID:          "u1",
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+34600111222",
		Verified:    true,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	userSvc := service.NewUserService(zap.NewNop(), users, nil)
	handler := NewUserHandler(zap.NewNop(), userSvc)

	r := gin.New()
	r.GET("/me", stubAuth("u1"), handler.Me)
	r.PATCH("/me", stubAuth("u1"), handler.UpdateMe)
	r.POST("/me/avatar", stubAuth("u1"), handler.UploadAvatar)
	return r, users
}

func TestProfileEndpoints_Me(t *testing.T) {
	r, _ := newProfileTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Email != "ada@example.com" {
		t.Fatalf("expected profile email, got %q", resp.User.Email)
	}
}

func TestProfileEndpoints_UpdateMe(t *testing.T) {
	r, users := newProfileTestServer(t)

	raw, _ := json.Marshal(map[string]any{"full_name": "Ada L."})
	req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored, err := users.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if stored.FullName != "Ada L." {
		t.Fatalf("expected name updated, got %q", stored.FullName)
	}
}

func TestProfileEndpoints_UpdateMeBadDate(t *testing.T) {
	r, _ := newProfileTestServer(t)

	raw, _ := json.Marshal(map[string]any{"date_of_birth": "1990-12-10"})
	req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp.Errors["date_of_birth"]; !ok {
		t.Fatalf("expected date_of_birth error, got %v", resp.Errors)
	}
}

func TestProfileEndpoints_UploadAvatarWithoutStorage(t *testing.T) {
	r, _ := newProfileTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/me/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Sin provider configurado el endpoint responde 503.
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage provider, got %d", rec.Code)
	}
}

func TestProfileEndpoints_UploadAvatarMissingFile(t *testing.T) {
	r, _ := newProfileTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/me/avatar", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without avatar file, got %d", rec.Code)
	}
}
