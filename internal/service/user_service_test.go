package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"staybook/internal/domain"
)

type mockAvatarProvider struct {
	lastFilename string
	url          string
	err          error
}

func (m *mockAvatarProvider) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	m.lastFilename = filename
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func seedProfileUser(t *testing.T, users *mockUserRepo) domain.User {
	t.Helper()
	user := domain.User{
		ID:          "u1",
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+34600111222",
		Verified:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestUserServiceUpdateProfile_PartialUpdate(t *testing.T) {
	users := newMockUserRepo()
	seedProfileUser(t, users)
	svc := NewUserService(zap.NewNop(), users, nil)

	updated, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		FullName:    strPtr("  Ada L. "),
		DateOfBirth: strPtr("10-12-1990"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.FullName != "Ada L." {
		t.Fatalf("expected trimmed name, got %q", updated.FullName)
	}
	if updated.PhoneNumber != "+34600111222" {
		t.Fatalf("expected untouched phone, got %q", updated.PhoneNumber)
	}
	if updated.DateOfBirth.Year() != 1990 {
		t.Fatalf("expected parsed dob, got %v", updated.DateOfBirth)
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("expected updated_at set")
	}
}

func TestUserServiceUpdateProfile_PhoneTaken(t *testing.T) {
	users := newMockUserRepo()
	seedProfileUser(t, users)
	if err := users.Create(context.Background(), domain.User{
		ID:          "u2",
		Email:       "other@example.com",
		PhoneNumber: "+34600999888",
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	svc := NewUserService(zap.NewNop(), users, nil)

	_, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		PhoneNumber: strPtr("+34600999888"),
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["phone_number"]; !ok {
		t.Fatalf("expected phone_number error, got %v", vErr.Fields)
	}
}

func TestUserServiceUpdateProfile_BadDateFormat(t *testing.T) {
	users := newMockUserRepo()
	seedProfileUser(t, users)
	svc := NewUserService(zap.NewNop(), users, nil)

	_, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		DateOfBirth: strPtr("1990-12-10"),
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["date_of_birth"]; !ok {
		t.Fatalf("expected date_of_birth error, got %v", vErr.Fields)
	}
}

func TestUserServiceUploadAvatar_PersistsURL(t *testing.T) {
	users := newMockUserRepo()
	seedProfileUser(t, users)
	provider := &mockAvatarProvider{url: "https://cdn.example.com/avatars/u1.png"}
	svc := NewUserService(zap.NewNop(), users, provider)

	user, err := svc.UploadAvatar(context.Background(), "u1", strings.NewReader("png-bytes"), "me.png")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.AvatarURL != provider.url {
		t.Fatalf("expected avatar url persisted, got %q", user.AvatarURL)
	}
	if provider.lastFilename != "me.png" {
		t.Fatalf("expected filename forwarded, got %q", provider.lastFilename)
	}

	stored, err := users.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if stored.AvatarURL != provider.url {
		t.Fatalf("expected stored avatar url")
	}
}

func TestUserServiceUploadAvatar_NoProvider(t *testing.T) {
	users := newMockUserRepo()
	seedProfileUser(t, users)
	svc := NewUserService(zap.NewNop(), users, nil)

	_, err := svc.UploadAvatar(context.Background(), "u1", strings.NewReader("x"), "me.png")
	if !errors.Is(err, ErrAvatarStorageUnavailable) {
		t.Fatalf("expected ErrAvatarStorageUnavailable, got %v", err)
	}
}

func TestUserServiceGet_NotFound(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo(), nil)

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
