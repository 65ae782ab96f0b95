package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
	"staybook/internal/email"
	"staybook/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOTPNotFound        = errors.New("otp not found")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPMismatch        = errors.New("otp mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPurpose     = errors.New("invalid otp purpose")
)

// ValidationError acumula errores de campos. Se reportan todos juntos,
// no solo el primero.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

const dobLayout = "02-01-2006"

// AuthPolicy agrupa los parametros configurables del flujo de
// registro y OTP.
type AuthPolicy struct {
	OTPTTL time.Duration
	MinAge int
	MaxAge int
}

// AuthService orquesta el ciclo de vida de credenciales con OTP:
// registro, emision, verificacion, consumo y reset de password.
type AuthService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	tokens  repository.OtpRepository
	sender  email.Sender
	limiter OTPRateLimiter
	policy  AuthPolicy

	// Inyectables para tests deterministas.
	now      func() time.Time
	newCode  func() (string, error)
	dispatch func(task func())
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	tokens repository.OtpRepository,
	sender email.Sender,
	limiter OTPRateLimiter,
	policy AuthPolicy,
) *AuthService {
	if policy.OTPTTL <= 0 {
		policy.OTPTTL = 10 * time.Minute
	}
	if policy.MinAge <= 0 {
		policy.MinAge = 18
	}
	if policy.MaxAge <= 0 {
		policy.MaxAge = 100
	}
	return &AuthService{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		sender:   sender,
		limiter:  limiter,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  generateOTPCode,
		dispatch: func(task func()) { go task() },
	}
}

type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Gender      string
	DateOfBirth string // dd-MM-yyyy
}

// Register crea un usuario sin verificar y emite un OTP de registro.
// Los errores de campos se acumulan en un ValidationError unico.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.PhoneNumber)
	password := strings.TrimSpace(input.Password)

	fields := make(map[string]string)
	if emailAddr == "" {
		fields["email"] = "email is required"
	} else {
		exists, err := s.users.ExistsByEmail(ctx, emailAddr)
		if err != nil {
			return domain.User{}, err
		}
		if exists {
			fields["email"] = "email already registered"
		}
	}
	if phone == "" {
		fields["phone_number"] = "phone number is required"
	} else {
		exists, err := s.users.ExistsByPhone(ctx, phone)
		if err != nil {
			return domain.User{}, err
		}
		if exists {
			fields["phone_number"] = "phone number already registered"
		}
	}

	dob, err := time.Parse(dobLayout, strings.TrimSpace(input.DateOfBirth))
	if err != nil {
		fields["date_of_birth"] = "date of birth must use format dd-MM-yyyy"
	} else {
		now := s.now()
		if dob.After(now.AddDate(-s.policy.MinAge, 0, 0)) {
			fields["date_of_birth"] = fmt.Sprintf("you must be at least %d years old", s.policy.MinAge)
		}
		if dob.Before(now.AddDate(-s.policy.MaxAge, 0, 0)) {
			fields["date_of_birth"] = "date of birth is not valid"
		}
	}

	if len(fields) > 0 {
		return domain.User{}, &ValidationError{Fields: fields}
	}

	// El limite de emision se consulta antes de persistir: un rechazo
	// aca no debe dejar una cuenta sin verificar y sin codigo detras.
	if err := s.allowIssue(emailAddr); err != nil {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        emailAddr,
		PhoneNumber:  phone,
		DateOfBirth:  dob,
		Gender:       strings.TrimSpace(input.Gender),
		PasswordHash: string(hashBytes),
		Verified:     false,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	if err := s.issueOTP(ctx, emailAddr, domain.OtpPurposeRegister); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login autentica por email y password. Una cuenta sin verificar no
// puede iniciar sesion.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.Verified {
		return domain.User{}, ErrAccountNotVerified
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword emite un OTP de reset para una cuenta existente.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.allowIssue(emailAddr); err != nil {
		return err
	}
	return s.issueOTP(ctx, emailAddr, domain.OtpPurposeResetPassword)
}

// VerifyOTP valida el token mas reciente de (subject, purpose). Para
// REGISTER, validacion y consumo ocurren en una sola transaccion del
// repositorio y el exito marca al usuario como verificado; un segundo
// intento con el mismo codigo falla con ErrOTPNotFound.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr string, purpose domain.OtpPurpose, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !domain.ValidOtpPurpose(purpose) {
		return domain.User{}, ErrInvalidPurpose
	}

	if purpose == domain.OtpPurposeRegister {
		if err := s.consumeToken(ctx, emailAddr, purpose, code); err != nil {
			return domain.User{}, err
		}
	} else if err := s.checkToken(ctx, emailAddr, purpose, code); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if purpose == domain.OtpPurposeRegister {
		verifiedAt := s.now()
		if err := s.users.SetVerified(ctx, user.ID, verifiedAt); err != nil {
			return domain.User{}, err
		}
		user.Verified = true
		user.UpdatedAt = &verifiedAt
	}
	// Para RESET_PASSWORD la verificacion no muta nada: el paso de
	// reset revalida el mismo token antes de cambiar el password.
	return user, nil
}

// ResetPassword revalida el token de reset de forma independiente (no
// confia en una llamada previa a VerifyOTP), lo consume en la misma
// transaccion y recien entonces cambia el password.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	newPassword = strings.TrimSpace(newPassword)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if newPassword == "" {
		return &ValidationError{Fields: map[string]string{"new_password": "new password is required"}}
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.consumeToken(ctx, emailAddr, domain.OtpPurposeResetPassword, code); err != nil {
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, user.ID, string(hashBytes), s.now())
}

// checkToken aplica la escalera de validacion sin consumir: existencia,
// expiracion y recien despues igualdad de codigo.
func (s *AuthService) checkToken(ctx context.Context, subject string, purpose domain.OtpPurpose, code string) error {
	token, err := s.tokens.LatestByKey(ctx, subject, purpose)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPNotFound
		}
		return err
	}
	if !s.now().Before(token.ExpiresAt) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(token.Code)) != 1 {
		return ErrOTPMismatch
	}
	return nil
}

// consumeToken valida y consume el token en una sola transaccion del
// repositorio. Una emision intercalada hace fallar el codigo viejo con
// ErrOTPMismatch sin tocar el token nuevo.
func (s *AuthService) consumeToken(ctx context.Context, subject string, purpose domain.OtpPurpose, code string) error {
	err := s.tokens.ConsumeLatest(ctx, subject, purpose, code, s.now())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrOTPNotFound
	case errors.Is(err, repository.ErrTokenExpired):
		return ErrOTPExpired
	case errors.Is(err, repository.ErrCodeMismatch):
		return ErrOTPMismatch
	default:
		return err
	}
}

func (s *AuthService) allowIssue(subject string) error {
	if s.limiter != nil && !s.limiter.Allow(subject) {
		return ErrRateLimited
	}
	return nil
}

// issueOTP acuña un codigo, reemplaza el token previo de la clave y
// entrega el codigo al notifier en otro worker. Una falla de entrega se
// loggea y se traga: nunca llega al caller ni revierte la emision. El
// limite de emision ya fue consultado por el caller via allowIssue.
func (s *AuthService) issueOTP(ctx context.Context, subject string, purpose domain.OtpPurpose) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	now := s.now()
	token := domain.OtpToken{
		Subject:   subject,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.policy.OTPTTL),
		CreatedAt: now,
	}
	if _, err := s.tokens.Replace(ctx, token); err != nil {
		return err
	}

	sender := s.sender
	logger := s.logger
	expiresAt := token.ExpiresAt
	s.dispatch(func() {
		if sender == nil {
			return
		}
		if err := sender.SendOTP(context.Background(), subject, purpose, code, expiresAt); err != nil {
			if logger != nil {
				logger.Warn("send otp email failed",
					zap.Error(err),
					zap.String("email", subject),
					zap.String("purpose", string(purpose)),
				)
			}
		}
	})
	return nil
}

// generateOTPCode acuña un codigo de 6 digitos uniforme, con ceros a la
// izquierda preservados por el formato de ancho fijo.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
