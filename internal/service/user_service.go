package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/repository"
	"staybook/internal/storage"
)

var ErrAvatarStorageUnavailable = errors.New("avatar storage unavailable")

// UserService gestiona el perfil del usuario autenticado.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	avatars storage.Provider

	now func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, avatars storage.Provider) *UserService {
	return &UserService{
		logger:  logger,
		users:   users,
		avatars: avatars,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfileInput usa punteros: solo los campos presentes se tocan.
type UpdateProfileInput struct {
	FullName    *string
	PhoneNumber *string
	Gender      *string
	DateOfBirth *string // dd-MM-yyyy
	AvatarURL   *string
}

// UpdateProfile aplica un update parcial. El telefono nuevo no puede
// pertenecer a otro usuario.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	fields := make(map[string]string)
	if input.FullName != nil && strings.TrimSpace(*input.FullName) != "" {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.PhoneNumber != nil && strings.TrimSpace(*input.PhoneNumber) != "" {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone != user.PhoneNumber {
			exists, err := s.users.ExistsByPhone(ctx, phone)
			if err != nil {
				return domain.User{}, err
			}
			if exists {
				fields["phone_number"] = "phone number already in use"
			} else {
				user.PhoneNumber = phone
			}
		}
	}
	if input.Gender != nil && strings.TrimSpace(*input.Gender) != "" {
		user.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.DateOfBirth != nil && strings.TrimSpace(*input.DateOfBirth) != "" {
		dob, err := time.Parse(dobLayout, strings.TrimSpace(*input.DateOfBirth))
		if err != nil {
			fields["date_of_birth"] = "date of birth must use format dd-MM-yyyy"
		} else {
			user.DateOfBirth = dob
		}
	}
	if input.AvatarURL != nil && strings.TrimSpace(*input.AvatarURL) != "" {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}

	if len(fields) > 0 {
		return domain.User{}, &ValidationError{Fields: fields}
	}

	updatedAt := s.now()
	user.UpdatedAt = &updatedAt
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UploadAvatar sube el archivo al provider configurado y persiste la
// URL resultante en el perfil.
func (s *UserService) UploadAvatar(ctx context.Context, id string, file io.Reader, filename string) (domain.User, error) {
	if s.avatars == nil {
		return domain.User{}, ErrAvatarStorageUnavailable
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	url, err := s.avatars.Upload(ctx, file, filename)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("avatar upload failed", zap.Error(err), zap.String("user_id", id))
		}
		return domain.User{}, err
	}

	user.AvatarURL = url
	updatedAt := s.now()
	user.UpdatedAt = &updatedAt
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
