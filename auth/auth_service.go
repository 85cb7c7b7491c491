package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/community-client/api"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/sessions"
	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Backend is the part of the REST API the foreground flows call.
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
	Verify(ctx context.Context, req api.VerifyRequest) (*api.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error)
	Me(ctx context.Context, ts oauth2.TokenSource) (*users.User, error)
	UpdateMe(ctx context.Context, ts oauth2.TokenSource, user *users.User) (*users.User, error)
}

var _ Backend = (*api.Client)(nil)

// Session is the session state the flows establish and clear.
type Session interface {
	oauth2.TokenSource
	Login(ctx context.Context, user *users.User, accessToken, refreshToken string) error
	UpdateUser(ctx context.Context, user *users.User) error
	Logout(ctx context.Context)
	IsLoggedIn() bool
}

var _ Session = (*sessions.Manager)(nil)

// Service runs the user-initiated authentication flows. Each form is validated
// before any network call, and a failed flow leaves the session untouched.
type Service struct {
	backend   Backend
	session   Session
	validator *Validator
	logger    zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the foreground auth flows over backend and session
func NewService(backend Backend, session Session, options ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("[auth.NewService] backend is required")
	}
	if session == nil {
		return nil, errors.New("[auth.NewService] session is required")
	}

	s := &Service{
		backend:   backend,
		session:   session,
		validator: NewValidator(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SignIn exchanges credentials for a session and adopts it.
func (s *Service) SignIn(ctx context.Context, email, password string) (*users.User, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.ValidateSignIn(email, password); err != nil {
		return nil, err
	}

	resp, err := s.backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.logger.Warn().Err(err).Msg("sign in failed")
		return nil, errors.Wrap(err, "[auth.Service.SignIn]")
	}
	if err := s.session.Login(ctx, resp.User, resp.Token, resp.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[auth.Service.SignIn]")
	}
	s.logger.Info().Str("user_id", resp.User.ID).Msg("signed in")
	return resp.User.Clone(), nil
}

// SignUp creates an account. The backend emails a verification code, redeemed
// with Verify. The returned text is the backend's acknowledgement.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.BahaiID = strings.TrimSpace(form.BahaiID)
	if err := s.validator.ValidateSignUp(form); err != nil {
		return "", err
	}

	resp, err := s.backend.Register(ctx, api.RegisterRequest{
		Email:    form.Email,
		BahaiID:  form.BahaiID,
		Password: form.Password,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("registration failed")
		return "", errors.Wrap(err, "[auth.Service.SignUp]")
	}
	return messageOr(resp, VerificationSentMessage), nil
}

// Verify redeems the emailed code and adopts the session it returns.
func (s *Service) Verify(ctx context.Context, bahaiID, code, password string) (*users.User, error) {
	bahaiID, code = strings.TrimSpace(bahaiID), strings.TrimSpace(code)
	if err := s.validator.ValidateVerification(bahaiID, code, password); err != nil {
		return nil, err
	}

	resp, err := s.backend.Verify(ctx, api.VerifyRequest{
		BahaiID:          bahaiID,
		VerificationCode: code,
		Password:         password,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("verification failed")
		return nil, errors.Wrap(err, "[auth.Service.Verify]")
	}
	if err := s.session.Login(ctx, resp.User, resp.Token, resp.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[auth.Service.Verify]")
	}
	s.logger.Info().Str("user_id", resp.User.ID).Msg("verified and signed in")
	return resp.User.Clone(), nil
}

// ForgotPassword asks the backend to email a reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return "", err
	}

	resp, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Msg("forgot password failed")
		return "", errors.Wrap(err, "[auth.Service.ForgotPassword]")
	}
	return messageOr(resp, PasswordResetSentMessage), nil
}

// SignOut clears the session. It never fails.
func (s *Service) SignOut(ctx context.Context) {
	s.session.Logout(ctx)
	s.logger.Info().Msg("signed out")
}

// RefreshProfile fetches the current user record and replaces the session's
// snapshot with it.
func (s *Service) RefreshProfile(ctx context.Context) (*users.User, error) {
	if !s.session.IsLoggedIn() {
		return nil, errors.Wrap(clienterrors.ErrNotLoggedIn, "[auth.Service.RefreshProfile]")
	}
	user, err := s.backend.Me(ctx, s.session)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Service.RefreshProfile]")
	}
	if err := s.session.UpdateUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[auth.Service.RefreshProfile]")
	}
	return user, nil
}

// UpdateProfile sends the edited profile and adopts what the backend stored.
func (s *Service) UpdateProfile(ctx context.Context, user *users.User) (*users.User, error) {
	if err := s.validator.ValidateProfile(user); err != nil {
		return nil, err
	}
	if !s.session.IsLoggedIn() {
		return nil, errors.Wrap(clienterrors.ErrNotLoggedIn, "[auth.Service.UpdateProfile]")
	}

	stored, err := s.backend.UpdateMe(ctx, s.session, user)
	if err != nil {
		s.logger.Warn().Err(err).Msg("profile update failed")
		return nil, errors.Wrap(err, "[auth.Service.UpdateProfile]")
	}
	if err := s.session.UpdateUser(ctx, stored); err != nil {
		return nil, errors.Wrap(err, "[auth.Service.UpdateProfile]")
	}
	return stored, nil
}

func messageOr(resp *api.MessageResponse, fallback string) string {
	if resp == nil || strings.TrimSpace(resp.Message) == "" {
		return fallback
	}
	return resp.Message
}
