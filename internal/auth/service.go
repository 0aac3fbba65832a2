package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/request-routing/internal"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/core/textfold"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/metrics"
)

// Service authenticates users against the user store.
type Service struct {
	users     UserSource
	tokens    TokenIssuer
	passwords PasswordScheme
	roles     *RoleResolver
	policy    internal.Policy
	logger    *slog.Logger
}

// NewService creates a new auth service. policy decides what happens when a
// stored role string matches no keyword group.
func NewService(users UserSource, tokens TokenIssuer, passwords PasswordScheme, policy internal.Policy, logger *slog.Logger) *Service {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	if !policy.Valid() {
		policy = internal.PolicyFailSafe
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		roles:     NewRoleResolver(logger),
		policy:    policy,
		logger:    logger,
	}
}

// Authenticate finds the first active user whose folded email and password
// match the input and opens a session for it.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*Session, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to load users", "error", err)
		metrics.LoginAttemptsTotal.WithLabelValues("store_unavailable").Inc()
		return nil, internal.ErrEmptyUserStore.Wrap(err)
	}
	if len(users) == 0 {
		metrics.LoginAttemptsTotal.WithLabelValues("store_unavailable").Inc()
		return nil, internal.ErrEmptyUserStore
	}

	u := s.match(users, dto)
	if u == nil {
		s.logger.Info("login rejected", "email", dto.Email)
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, internal.ErrInvalidCredentials
	}

	rawRole := u.RawRole
	if strings.TrimSpace(rawRole) == "" {
		rawRole = u.Role
	}
	role, matched := s.roles.Resolve(rawRole)
	if !matched && s.policy == internal.PolicyFailClosed {
		metrics.LoginAttemptsTotal.WithLabelValues("unresolved_role").Inc()
		return nil, internal.ErrUnresolvedRole
	}

	sessionUser := SessionUser{
		Email:      strings.TrimSpace(u.Email),
		Name:       displayName(u.Name, dto.Email),
		Role:       role,
		RoleLabel:  role.Label(),
		Department: department.Normalize(u.Department),
	}

	token, expiresAt, err := s.tokens.Issue(internal.Principal{
		Email:      sessionUser.Email,
		Name:       sessionUser.Name,
		Role:       string(sessionUser.Role),
		Department: sessionUser.Department,
	})
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err, "email", sessionUser.Email)
		return nil, internal.NewInternalError("failed to issue session token", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("user logged in",
		"email", sessionUser.Email,
		"role", sessionUser.Role,
		"department", sessionUser.Department)

	return &Session{User: sessionUser, Token: token, ExpiresAt: expiresAt}, nil
}

// match returns the first active user whose credentials fold-equal the input.
// Duplicate emails are tolerated; the earliest row wins.
func (s *Service) match(users []*userDatamodel.User, dto LoginDTO) *userDatamodel.User {
	emailKey := textfold.Fold(dto.Email)
	for _, u := range users {
		if u.Status == userDatamodel.StatusArchived {
			continue
		}
		if textfold.Fold(u.Email) != emailKey {
			continue
		}
		if s.passwords.Match(u.Password, dto.Password) {
			return u
		}
	}
	return nil
}

func (s *Service) VerifyToken(token string) (internal.Principal, error) {
	if token == "" {
		return internal.Principal{}, internal.ErrInvalidToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, internal.ErrTokenExpired) {
			return internal.Principal{}, err
		}
		return internal.Principal{}, internal.ErrInvalidToken.Wrap(err)
	}
	return claims.Principal(), nil
}

// displayName falls back to the local part of the email when name is blank.
func displayName(name, email string) string {
	if n := textfold.Clean(name); n != "" {
		return n
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}
