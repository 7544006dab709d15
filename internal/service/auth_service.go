package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/digitalrehman/secure-todo-flow/internal/config"
	"github.com/digitalrehman/secure-todo-flow/internal/domain"
	"github.com/digitalrehman/secure-todo-flow/internal/googleauth"
	"github.com/digitalrehman/secure-todo-flow/internal/notify"
	"github.com/digitalrehman/secure-todo-flow/internal/repository"
	"github.com/digitalrehman/secure-todo-flow/internal/token"
)

const registerMessage = "Registration successful! Please verify your email."

// UserView is the user payload exposed over HTTP.
type UserView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	PhoneNumber     *string `json:"phoneNumber"`
	IsEmailVerified bool    `json:"isEmailVerified"`
	IsPhoneVerified bool    `json:"isPhoneVerified"`
}

// AuthResult is returned by every login path: the identity plus a freshly
// minted session token.
type AuthResult struct {
	User    UserView `json:"user"`
	Token   string   `json:"token"`
	Message string   `json:"message,omitempty"`
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
}

// AuthService implements registration, password login, both verification
// channels and federated login against the user store.
type AuthService struct {
	users  repository.UserRepository
	tokens *token.Issuer
	email  notify.EmailSender
	sms    notify.SMSSender
	google googleauth.Verifier
	cfg    config.Config
	logger *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *token.Issuer,
	email notify.EmailSender,
	sms notify.SMSSender,
	google googleauth.Verifier,
	cfg config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		email:  email,
		sms:    sms,
		google: google,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a credential account. The email must be unused; the
// password is bcrypt-hashed; an email verification secret with a 24h window
// is stored at creation. Login is not gated on verification.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	email := normalizeIdentifier(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" || strings.TrimSpace(in.Name) == "" {
		return AuthResult{}, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, domain.ErrDuplicateAccount
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	secret, err := newEmailSecret()
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("generate verification secret: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:                       uuid.NewString(),
		Name:                     strings.TrimSpace(in.Name),
		Email:                    email,
		PasswordHash:             string(hashed),
		PhoneNumber:              strings.TrimSpace(in.PhoneNumber),
		EmailVerificationSecret:  secret,
		EmailVerificationExpires: time.Now().Add(s.cfg.EmailTokenTTL),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return AuthResult{}, err
		}
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.deliverEmailSecret(ctx, created.Email, secret)

	sessionToken, err := s.tokens.Issue(created.ID)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("issue session token: %w", err)
	}

	s.audit("auth.register.success", "user_id", created.ID)
	return AuthResult{User: viewOf(created), Token: sessionToken, Message: registerMessage}, nil
}

// Login authenticates email+password. Any mismatch, including an unknown
// email or a pure federated account, yields ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("get user: %w", err)
	}
	if !user.HasPassword() {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit("auth.login.rejected", "user_id", user.ID)
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	sessionToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("issue session token: %w", err)
	}

	s.audit("auth.login.success", "user_id", user.ID)
	return AuthResult{User: viewOf(user), Token: sessionToken}, nil
}

// SendEmailVerification issues a fresh secret for the email channel,
// replacing any pending one. Delivery failures are logged, not surfaced.
func (s *AuthService) SendEmailVerification(ctx context.Context, email string) error {
	ctx, span := s.startSpan(ctx, "AuthService.SendEmailVerification")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		span.RecordError(err)
		return fmt.Errorf("get user: %w", err)
	}
	if user.EmailVerified {
		return domain.ErrEmailAlreadyVerified
	}

	secret, err := newEmailSecret()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("generate verification secret: %w", err)
	}

	// Overwrite any pending secret: concurrent sends are last-write-wins.
	if err := s.users.SetEmailVerification(ctx, user.ID, secret, time.Now().Add(s.cfg.EmailTokenTTL)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store verification secret: %w", err)
	}

	s.deliverEmailSecret(ctx, user.Email, secret)
	s.audit("auth.email_verification.sent", "user_id", user.ID)
	return nil
}

// VerifyEmail consumes an email verification secret. A secret validates at
// most once; afterwards the fields are cleared and re-use fails.
func (s *AuthService) VerifyEmail(ctx context.Context, secret string) error {
	ctx, span := s.startSpan(ctx, "AuthService.VerifyEmail")
	defer span.End()

	if strings.TrimSpace(secret) == "" {
		return domain.ErrInvalidOrExpiredSecret
	}

	user, err := s.users.GetByEmailSecret(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidOrExpiredSecret
		}
		span.RecordError(err)
		return fmt.Errorf("lookup secret: %w", err)
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.audit("auth.email_verification.success", "user_id", user.ID)
	return nil
}

// SendPhoneVerification issues a 6-digit code with a short expiry. The target
// user is resolved by explicit id first, then by stored phone number. When
// the account has no phone number yet, the supplied one is assigned.
// The returned code is non-empty only when code exposure is enabled.
func (s *AuthService) SendPhoneVerification(ctx context.Context, phoneNumber, userID string) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.SendPhoneVerification")
	defer span.End()

	user, err := s.resolvePhoneTarget(ctx, phoneNumber, userID)
	if err != nil {
		return "", err
	}

	code, err := newPhoneCode()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("generate code: %w", err)
	}

	if err := s.users.SetPhoneVerification(ctx, user.ID, strings.TrimSpace(phoneNumber), code, time.Now().Add(s.cfg.PhoneCodeTTL)); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("store code: %w", err)
	}

	target := user.PhoneNumber
	if target == "" {
		target = strings.TrimSpace(phoneNumber)
	}
	if err := s.sms.SendPhoneCode(ctx, target, code); err != nil {
		s.logger.Warn("phone code delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.audit("auth.phone_verification.sent", "user_id", user.ID)
	if s.cfg.ExposePhoneCode {
		return code, nil
	}
	return "", nil
}

// VerifyPhone consumes a phone verification code and returns the updated
// user on success.
func (s *AuthService) VerifyPhone(ctx context.Context, phoneNumber, userID, code string) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.VerifyPhone")
	defer span.End()

	user, err := s.resolvePhoneTarget(ctx, phoneNumber, userID)
	if err != nil {
		return UserView{}, err
	}

	if user.PhoneVerificationCode == "" ||
		user.PhoneVerificationCode != strings.TrimSpace(code) ||
		!user.PhoneVerificationExpires.After(time.Now()) {
		return UserView{}, domain.ErrInvalidOrExpiredSecret
	}

	updated, err := s.users.MarkPhoneVerified(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return UserView{}, fmt.Errorf("mark phone verified: %w", err)
	}

	s.audit("auth.phone_verification.success", "user_id", user.ID)
	return viewOf(updated), nil
}

// GoogleLogin validates a provider assertion and finds-or-creates the local
// account by email. Matching an existing account links the federated id and
// force-verifies the email; this silent merge is the documented trust policy.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GoogleLogin")
	defer span.End()

	profile, err := s.google.VerifyAssertion(ctx, idToken)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("google assertion rejected", zap.Error(err))
		return AuthResult{}, domain.ErrUpstreamVerification
	}
	if !profile.EmailVerified {
		return AuthResult{}, domain.ErrUnverifiedProviderEmail
	}

	email := normalizeIdentifier(profile.Email)
	var user domain.User
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user, err = s.users.LinkGoogleAccount(ctx, existing.ID, profile.SubjectID, profile.Picture)
		if err != nil {
			span.RecordError(err)
			return AuthResult{}, fmt.Errorf("link google account: %w", err)
		}
		s.audit("auth.google_login.linked", "user_id", user.ID)
	case errors.Is(err, domain.ErrUserNotFound):
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = email
		}
		user, err = s.users.Create(ctx, domain.User{
			ID:            uuid.NewString(),
			Name:          name,
			Email:         email,
			GoogleID:      profile.SubjectID,
			AvatarURL:     profile.Picture,
			EmailVerified: true,
		})
		if err != nil {
			span.RecordError(err)
			return AuthResult{}, fmt.Errorf("create user: %w", err)
		}
		s.audit("auth.google_login.created", "user_id", user.ID)
	default:
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("get user: %w", err)
	}

	sessionToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("issue session token: %w", err)
	}

	return AuthResult{User: viewOf(user), Token: sessionToken}, nil
}

// CurrentUser loads the profile for an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.CurrentUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return UserView{}, err
		}
		span.RecordError(err)
		return UserView{}, fmt.Errorf("get user: %w", err)
	}
	return viewOf(user), nil
}

func (s *AuthService) resolvePhoneTarget(ctx context.Context, phoneNumber, userID string) (domain.User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	userID = strings.TrimSpace(userID)

	switch {
	case userID != "":
		return s.users.GetByID(ctx, userID)
	case phoneNumber != "":
		return s.users.GetByPhone(ctx, phoneNumber)
	default:
		return domain.User{}, fmt.Errorf("%w: phone number or user id required", domain.ErrValidation)
	}
}

func (s *AuthService) deliverEmailSecret(ctx context.Context, email, secret string) {
	if err := s.email.SendEmailVerification(ctx, email, secret); err != nil {
		s.logger.Warn("email verification delivery failed", zap.String("email", email), zap.Error(err))
	}
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("secure-todo-flow/service").Start(ctx, name)
}

func (s *AuthService) audit(event string, kv ...any) {
	s.logger.Sugar().Infow(event, kv...)
}

func viewOf(user domain.User) UserView {
	var phone *string
	if user.PhoneNumber != "" {
		p := user.PhoneNumber
		phone = &p
	}
	return UserView{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		PhoneNumber:     phone,
		IsEmailVerified: user.EmailVerified,
		IsPhoneVerified: user.PhoneVerified,
	}
}

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func newEmailSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func newPhoneCode() (string, error) {
	// Uniform in [100000, 999999]: always six digits.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
