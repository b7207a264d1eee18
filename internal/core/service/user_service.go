package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/port"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailOrPhoneTaken  = errors.New("email or phone already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPhone       = errors.New("phone number must be 10 digits")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrCannotDeleteAdmin  = errors.New("cannot delete an admin user")
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

const (
	otpTTL        = 15 * time.Minute
	resetTokenTTL = 30 * time.Minute
	sessionTTL    = 30 * 24 * time.Hour
)

type UserService struct {
	users       port.UserRepository
	sessions    port.SessionStore
	pending     port.RegistrationStore
	resets      port.ResetTokenStore
	mailer      port.Mailer
	frontendURL string
	logger      zerolog.Logger
}

func NewUserService(
	users port.UserRepository,
	sessions port.SessionStore,
	pending port.RegistrationStore,
	resets port.ResetTokenStore,
	mailer port.Mailer,
	frontendURL string,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:       users,
		sessions:    sessions,
		pending:     pending,
		resets:      resets,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register validates the signup, parks it in the pending store and
// mails a one-time code. No user row exists until the code is
// verified.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrInvalidEmail
	}
	if !phonePattern.MatchString(in.Phone) {
		return ErrInvalidPhone
	}
	if len(in.Password) < 6 {
		return ErrPasswordTooShort
	}

	taken, err := s.users.EmailOrPhoneTaken(ctx, in.Email, in.Phone)
	if err != nil {
		return fmt.Errorf("check email/phone: %w", err)
	}
	if taken {
		return ErrEmailOrPhoneTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	pendingUser := domain.PendingUser{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		OTP:          otp,
	}
	if err := s.pending.PutPending(ctx, pendingUser, otpTTL); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, in.Email, otp); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	s.logger.Info().Str("email", in.Email).Msg("registration otp sent")
	return nil
}

// VerifyOTP promotes a pending registration into a real user and opens
// a session for it.
func (s *UserService) VerifyOTP(ctx context.Context, email, otp string) (*domain.User, string, error) {
	pendingUser, err := s.pending.GetPending(ctx, email)
	if errors.Is(err, port.ErrCacheMiss) {
		return nil, "", ErrInvalidOTP
	}
	if err != nil {
		return nil, "", fmt.Errorf("load pending registration: %w", err)
	}
	if pendingUser.OTP != otp {
		return nil, "", ErrInvalidOTP
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         pendingUser.Name,
		Email:        pendingUser.Email,
		Phone:        pendingUser.Phone,
		PasswordHash: pendingUser.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.pending.DeletePending(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to delete pending registration")
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if isNotFound(err) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, port.ErrCacheMiss) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if isNotFound(err) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// ForgotPassword mails a single-use reset link. A missing account is
// reported as success so the endpoint does not leak which emails
// exist.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if isNotFound(err) {
		s.logger.Info().Str("email", email).Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.resets.PutResetToken(ctx, token, user.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	userID, err := s.resets.ConsumeResetToken(ctx, token)
	if errors.Is(err, port.ErrCacheMiss) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if isNotFound(err) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if isNotFound(err) {
		return nil, ErrUserNotFound
	}
	return user, err
}

type UpdateProfileInput struct {
	Name     string
	Email    string
	Password string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if isNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" && in.Email != user.Email {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		taken, err := s.users.EmailOrPhoneTaken(ctx, in.Email, "")
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailOrPhoneTaken
		}
		user.Email = in.Email
	}
	if in.Password != "" {
		if len(in.Password) < 6 {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, ErrUserNotFound
	}
	return user, err
}

type AdminUpdateUserInput struct {
	Name    string
	Email   string
	IsAdmin *bool
}

func (s *UserService) AdminUpdateUser(ctx context.Context, id string, in AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		user.Email = in.Email
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if isNotFound(err) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.IsAdmin {
		return ErrCannotDeleteAdmin
	}
	return s.users.Delete(ctx, id)
}

// SendContactMessage forwards a contact-form submission to the company
// inbox.
func (s *UserService) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return ErrInvalidEmail
	}
	return s.mailer.SendContact(ctx, msg)
}

func (s *UserService) openSession(ctx context.Context, userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	if err := s.sessions.PutSession(ctx, token, userID, sessionTTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
