package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/normalize"
	"github.com/utafrali/EcommerceGo/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// User-facing auth failure messages.
const (
	MsgRegistrationFailed = "Registration failed"
	MsgLoginFailed        = "Login failed"
	MsgInvalidLogin       = "Invalid login response"
	MsgMissingUser        = "Missing user in response"
	MsgSessionExpired     = "Session expired"
)

// RegisterInput is the sign-up form. ConfirmPassword is checked locally and
// never sent to the server.
type RegisterInput struct {
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required"`
	ConfirmPassword string          `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Phone           string          `json:"phone"`
	Address         *domain.Address `json:"address,omitempty"`
}

// LoginInput is the sign-in form. The email format is left to the server so
// its message reaches the user.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   *domain.Address `json:"address,omitempty"`
}

// AuthState is a snapshot of the auth store.
type AuthState struct {
	Status          domain.AuthStatus `json:"status"`
	User            *domain.User      `json:"user"`
	Token           string            `json:"token,omitempty"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	Loading         bool              `json:"loading"`
	Error           string            `json:"error,omitempty"`
}

// AuthService drives register, login, session checks and logout. The session
// itself lives in the shared session.Holder so the API client sees token
// changes immediately.
type AuthService struct {
	api    API
	holder *session.Holder
	repo   repository.SessionRepository
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	status  domain.AuthStatus
	loading bool
	err     string
}

// NewAuthService creates the auth store.
func NewAuthService(api API, holder *session.Holder, repo repository.SessionRepository, events EventPublisher, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:    api,
		holder: holder,
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
		status: domain.StatusAnonymous,
	}
}

// State returns a copy of the current auth state.
func (s *AuthService) State() AuthState {
	sess := s.holder.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthState{
		Status:          s.status,
		User:            sess.User,
		Token:           sess.Token,
		IsAuthenticated: sess.IsAuthenticated,
		Loading:         s.loading,
		Error:           s.err,
	}
}

// Token returns the current bearer token.
func (s *AuthService) Token() string {
	return s.holder.Token()
}

func (s *AuthService) set(status domain.AuthStatus, loading bool, msg string) {
	s.mu.Lock()
	s.status = status
	s.loading = loading
	s.err = msg
	s.mu.Unlock()
}

func (s *AuthService) begin() domain.AuthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.status
	s.status = domain.StatusAuthenticating
	s.loading = true
	s.err = ""
	return prev
}

// Register creates an account. It does not sign the user in. Failures are
// recorded in State().Error and reported as false.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) bool {
	log := logger.WithContext(ctx, s.logger)

	if err := validator.Validate(in); err != nil {
		s.recordFailure(validationMessage(err, MsgRegistrationFailed))
		return false
	}

	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	req := registerRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
	}
	if _, err := call(ctx, s.api, http.MethodPost, "/auth/register", req); err != nil {
		msg := apperrors.Message(err, MsgRegistrationFailed)
		log.WarnContext(ctx, "registration failed",
			slog.String("email", in.Email),
			slog.String("error", err.Error()),
		)
		s.recordFailure(msg)
		return false
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	log.InfoContext(ctx, "account registered", slog.String("email", in.Email))
	return true
}

func (s *AuthService) recordFailure(msg string) {
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
}

// Login signs in and, on success, publishes LoggedIn and waits for the
// dependent stores to refresh. On failure the session is cleared.
func (s *AuthService) Login(ctx context.Context, email, password string) bool {
	log := logger.WithContext(ctx, s.logger)

	if err := validator.Validate(LoginInput{Email: email, Password: password}); err != nil {
		s.dropSession(ctx)
		s.set(domain.StatusAnonymous, false, validationMessage(err, MsgLoginFailed))
		return false
	}

	s.begin()

	root, err := call(ctx, s.api, http.MethodPost, "/auth/login", LoginInput{Email: email, Password: password})
	var (
		token string
		user  *domain.User
	)
	if err == nil {
		token, user, err = normalize.LoginResult(root)
	}
	if err != nil {
		log.WarnContext(ctx, "login failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		s.dropSession(ctx)
		s.set(domain.StatusAnonymous, false, loginFailureMessage(err))
		return false
	}

	sess := domain.Session{User: user, Token: token, IsAuthenticated: true}
	s.holder.Set(sess)
	s.persist(ctx, sess)
	s.set(domain.StatusAuthenticated, false, "")

	log.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	s.publish(ctx, domain.SessionLoggedIn, user)
	return true
}

// CheckAuth validates the current token against the server. Without a token
// it leaves the store anonymous. An expired JWT is rejected without a network
// call. Any failure clears the session and records "Session expired".
func (s *AuthService) CheckAuth(ctx context.Context) bool {
	log := logger.WithContext(ctx, s.logger)

	token := s.holder.Token()
	if token == "" {
		s.holder.Clear()
		s.set(domain.StatusAnonymous, false, "")
		return false
	}

	if tokenExpired(token, s.now()) {
		log.InfoContext(ctx, "stored token expired")
		return s.expire(ctx)
	}

	prev := s.begin()

	root, err := call(ctx, s.api, http.MethodGet, "/me", nil)
	var user *domain.User
	if err == nil {
		user, err = normalize.ProfileUser(root)
	}
	if err != nil {
		log.WarnContext(ctx, "session check failed", slog.String("error", err.Error()))
		return s.expire(ctx)
	}

	if !s.holder.SetUser(user) {
		// Logged out while the check was in flight.
		s.set(domain.StatusAnonymous, false, "")
		return false
	}
	s.persist(ctx, s.holder.Snapshot())
	s.set(domain.StatusAuthenticated, false, "")

	if prev != domain.StatusAuthenticated {
		s.publish(ctx, domain.SessionRestored, user)
	}
	return true
}

func (s *AuthService) expire(ctx context.Context) bool {
	user := s.holder.Snapshot().User
	s.dropSession(ctx)
	s.set(domain.StatusAnonymous, false, MsgSessionExpired)
	s.publish(ctx, domain.SessionExpired, user)
	return false
}

// Logout clears the session locally and in storage, then publishes LoggedOut
// so cart and wishlist drop their local state.
func (s *AuthService) Logout(ctx context.Context) {
	user := s.holder.Snapshot().User
	s.dropSession(ctx)
	s.set(domain.StatusAnonymous, false, "")

	if user != nil {
		logger.WithContext(ctx, s.logger).InfoContext(ctx, "user logged out", slog.String("user_id", user.ID))
	}
	s.publish(ctx, domain.SessionLoggedOut, user)
}

// Restore loads the persisted session at startup. The restored session is
// unverified until CheckAuth succeeds. It reports whether a session was found.
func (s *AuthService) Restore(ctx context.Context) bool {
	log := logger.WithContext(ctx, s.logger)

	sess, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.DebugContext(ctx, "no stored session", slog.String("reason", err.Error()))
		} else {
			log.WarnContext(ctx, "failed to load stored session", slog.String("error", err.Error()))
		}
		s.holder.Clear()
		s.set(domain.StatusAnonymous, false, "")
		return false
	}

	s.holder.Set(*sess)
	s.set(domain.StatusAuthenticating, false, "")
	log.InfoContext(ctx, "session restored", slog.String("user_id", sess.UserID()))
	return true
}

func (s *AuthService) dropSession(ctx context.Context) {
	s.holder.Clear()
	if err := s.repo.Clear(ctx); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to clear stored session",
			slog.String("error", err.Error()),
		)
	}
}

func (s *AuthService) persist(ctx context.Context, sess domain.Session) {
	if err := s.repo.Save(ctx, sess); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to store session",
			slog.String("error", err.Error()),
		)
	}
}

func (s *AuthService) publish(ctx context.Context, t domain.SessionEventType, user *domain.User) {
	if s.events == nil {
		return
	}
	e := domain.SessionEvent{Type: t}
	if user != nil {
		e.UserID = user.ID
		e.Email = user.Email
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "session event delivery incomplete",
			slog.String("event", string(t)),
			slog.String("error", err.Error()),
		)
	}
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, normalize.ErrInvalidLogin):
		return MsgInvalidLogin
	case errors.Is(err, normalize.ErrMissingUser):
		return MsgMissingUser
	default:
		return apperrors.Message(err, MsgLoginFailed)
	}
}

func validationMessage(err error, fallback string) string {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return fallback
}

// tokenExpired reports whether token is a JWT whose exp claim is not in the
// future. The signature is not verified; opaque tokens are never expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
