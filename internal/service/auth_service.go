package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/t-azam747/SecureRelief-sub003/internal/config"
	"github.com/t-azam747/SecureRelief-sub003/internal/errs"
	"github.com/t-azam747/SecureRelief-sub003/internal/ids"
	"github.com/t-azam747/SecureRelief-sub003/internal/metrics"
	"github.com/t-azam747/SecureRelief-sub003/internal/models"
	"github.com/t-azam747/SecureRelief-sub003/internal/repository"
	"github.com/t-azam747/SecureRelief-sub003/internal/security"
	"github.com/t-azam747/SecureRelief-sub003/internal/siwe"
)

// UserStore is the credential store the service runs against.
// *repository.UserRepository satisfies it.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByWallet(ctx context.Context, address string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	SetNonce(ctx context.Context, id string, nonce *string) (models.User, error)
	ConsumeNonce(ctx context.Context, id string, nonce string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
}

// Revoker denylists bearer tokens on logout.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

const genericSignatureDetail = "signature verification failed"

type AuthService struct {
	users    UserStore
	nonces   *NonceIssuer
	sessions *SessionIssuer
	revoker  Revoker
	validate *validator.Validate
	cfg      *config.AppConfig
	metrics  *metrics.Auth
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the orchestrator. revoker may be nil, in which case
// logout is a plain acknowledgment.
func NewAuthService(
	users UserStore,
	revoker Revoker,
	cfg *config.AppConfig,
	m *metrics.Auth,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		nonces:   NewNonceIssuer(users, m),
		sessions: NewSessionIssuer(cfg.Security),
		revoker:  revoker,
		validate: newValidator(),
		cfg:      cfg,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

type PrecheckResult struct {
	WalletAddress string
	Nonce         string
}

// Precheck starts a login cycle for a registered email. Unknown emails are
// reported as not found so the client can direct the user to register.
func (s *AuthService) Precheck(ctx context.Context, email string) (PrecheckResult, error) {
	email = normalizeEmail(email)
	if err := requireField("email", email); err != nil {
		return PrecheckResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return PrecheckResult{}, s.lookupError(err, "User not found. Please register first.")
	}

	nonce, err := s.nonces.Issue(ctx, user.ID)
	if err != nil {
		return PrecheckResult{}, s.internal(err, "issue nonce failed")
	}

	return PrecheckResult{WalletAddress: user.WalletAddress, Nonce: nonce}, nil
}

// NonceForWallet starts a login cycle keyed by wallet address.
func (s *AuthService) NonceForWallet(ctx context.Context, walletAddress string) (string, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if err := requireField("walletAddress", walletAddress); err != nil {
		return "", err
	}
	if !siwe.IsHexAddress(walletAddress) {
		return "", errs.Validation("Invalid wallet address", []errs.Issue{{
			Field:   "walletAddress",
			Rule:    "wallet",
			Message: "wallet address must be 0x followed by 40 hex characters",
		}})
	}

	user, err := s.users.FindByWallet(ctx, walletAddress)
	if err != nil {
		return "", s.lookupError(err, "Wallet not registered")
	}

	nonce, err := s.nonces.Issue(ctx, user.ID)
	if err != nil {
		return "", s.internal(err, "issue nonce failed")
	}
	return nonce, nil
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	WalletAddress   string `json:"walletAddress" validate:"required,wallet"`
	Role            string `json:"role" validate:"required,oneof=DONOR BENEFICIARY VENDOR ADMIN ORACLE"`
}

// Register creates an account. It does not start a session; the caller is
// expected to log in afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.WalletAddress = strings.TrimSpace(input.WalletAddress)
	input.Role = strings.TrimSpace(input.Role)

	if err := s.validate.Struct(input); err != nil {
		return models.User{}, validationError(err)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, errs.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, s.internal(err, "email lookup failed")
	}

	if _, err := s.users.FindByWallet(ctx, input.WalletAddress); err == nil {
		return models.User{}, errs.Conflict("Wallet address already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, s.internal(err, "wallet lookup failed")
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return models.User{}, s.internal(err, "hash password failed")
	}

	role := models.UserRole(input.Role)
	user := models.User{
		ID:            ids.New(),
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  hash,
		WalletAddress: siwe.ChecksumAddress(input.WalletAddress),
		Role:          role,
		Status:        models.InitialStatus(role),
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return models.User{}, errs.Conflict("Email already registered")
		case errors.Is(err, repository.ErrWalletTaken):
			return models.User{}, errs.Conflict("Wallet address already registered")
		}
		return models.User{}, s.internal(err, "create user failed")
	}

	s.metrics.Registered(string(user.Role))
	s.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("status", string(user.Status)).
		Msg("user registered")

	return user, nil
}

type LoginInput struct {
	Email     string
	Message   string
	Signature string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// Login completes a login cycle. The nonce on file is consumed only once the
// signature checks out, and it is consumed before the account status is
// looked at, so a locked account still burns its nonce.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Email = normalizeEmail(input.Email)
	for _, f := range []struct{ name, value string }{
		{"email", input.Email},
		{"message", input.Message},
		{"signature", input.Signature},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return LoginResult{}, err
		}
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.Login(metrics.OutcomeNotFound)
		}
		return LoginResult{}, s.lookupError(err, "User not found")
	}

	if user.Nonce == nil {
		s.metrics.Login(metrics.OutcomeNoNonce)
		return LoginResult{}, errs.InvalidState("Nonce not generated. Request a new nonce and sign again.")
	}

	res := siwe.Verify(input.Message, input.Signature, *user.Nonce, siwe.Options{
		Domain: s.cfg.SIWE.Domain,
		Now:    s.now,
	})
	if !res.Success {
		s.metrics.Login(metrics.OutcomeBadSignature)
		s.log.Warn().Err(res.Err).Str("user_id", user.ID).Msg("signature verification failed")
		detail := genericSignatureDetail
		if siwe.IsParseError(res.Err) {
			detail = res.Err.Error()
		}
		return LoginResult{}, errs.Unauthorized("Invalid signature", detail)
	}

	if !siwe.EqualAddress(res.Address, user.WalletAddress) {
		s.metrics.Login(metrics.OutcomeWalletDiff)
		s.log.Warn().Str("user_id", user.ID).Str("signer", res.Address).Msg("wallet mismatch")
		return LoginResult{}, errs.Unauthorized("Wallet address mismatch", "")
	}

	consumed, err := s.users.ConsumeNonce(ctx, user.ID, *user.Nonce)
	if err != nil {
		s.metrics.Login(metrics.OutcomeError)
		return LoginResult{}, s.internal(err, "consume nonce failed")
	}
	if !consumed {
		s.metrics.Login(metrics.OutcomeReplay)
		return LoginResult{}, errs.InvalidState("Nonce already used. Request a new nonce and sign again.")
	}

	if user.Status.Locked() {
		s.metrics.Login(metrics.OutcomeLocked)
		s.log.Warn().Str("user_id", user.ID).Str("status", string(user.Status)).Msg("login refused for locked account")
		return LoginResult{}, errs.Forbidden("Account is locked")
	}

	user.Nonce = nil
	user.NonceIssuedAt = nil

	tokens, err := s.sessions.GenerateTokens(user)
	if err != nil {
		s.metrics.Login(metrics.OutcomeError)
		return LoginResult{}, s.internal(err, "mint tokens failed")
	}

	s.metrics.Login(metrics.OutcomeSuccess)
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return LoginResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

// Me loads the account behind verified access claims.
func (s *AuthService) Me(ctx context.Context, claims *security.AccessClaims) (models.User, error) {
	if claims == nil || claims.UserID == "" {
		return models.User{}, errs.Unauthorized("Unauthorized", "")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, s.lookupError(err, "User not found")
	}
	return user, nil
}

// Logout always succeeds from the caller's point of view. With a revoker
// configured, a still-valid access token is denylisted for its remaining
// lifetime.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	if s.revoker == nil || accessToken == "" {
		return
	}
	claims, err := security.ParseAccessToken(accessToken, s.cfg.Security.JWTAccessSecret)
	if err != nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoker.Revoke(ctx, accessToken, ttl); err != nil {
		s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("revoke token failed")
		return
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("user logged out")
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	if err := requireField("refreshToken", refreshToken); err != nil {
		return LoginResult{}, err
	}

	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return LoginResult{}, errs.Unauthorized("Refresh token expired", "")
		}
		return LoginResult{}, errs.Unauthorized("Invalid refresh token", "")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return LoginResult{}, s.lookupError(err, "User not found")
	}
	if user.Status.Locked() {
		return LoginResult{}, errs.Forbidden("Account is locked")
	}

	tokens, err := s.sessions.GenerateTokens(user)
	if err != nil {
		return LoginResult{}, s.internal(err, "mint tokens failed")
	}
	return LoginResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

// UpdateStatus is the administrative path for activating or locking accounts.
func (s *AuthService) UpdateStatus(ctx context.Context, userID string, status string) (models.User, error) {
	next := models.UserStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return models.User{}, errs.Validation("Invalid status", []errs.Issue{{
			Field:   "status",
			Rule:    "oneof",
			Message: "status must be one of pending, active, blocked, suspended",
		}})
	}

	if err := s.users.UpdateStatus(ctx, userID, next); err != nil {
		return models.User{}, s.lookupError(err, "User not found")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, s.lookupError(err, "User not found")
	}

	s.log.Info().Str("user_id", userID).Str("status", string(next)).Msg("user status updated")
	return user, nil
}

func (s *AuthService) lookupError(err error, notFound string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return errs.NotFound(notFound)
	}
	return s.internal(err, "user lookup failed")
}

func (s *AuthService) internal(err error, msg string) error {
	s.log.Error().Err(err).Msg(msg)
	return errs.Internal("Internal server error", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
