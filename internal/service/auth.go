package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dirgate/internal/domain"
	"dirgate/internal/metrics"
)

// AuthService handles login, logout, and password lifecycle operations.
type AuthService struct {
	users       domain.UserRepository
	credentials *CredentialStore
	lockout     *Lockout
	rules       []domain.PasswordRule
	recorder    *Recorder

	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users domain.UserRepository,
	credentials *CredentialStore,
	lockout *Lockout,
	rules []domain.PasswordRule,
	recorder *Recorder,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       users,
		credentials: credentials,
		lockout:     lockout,
		rules:       rules,
		recorder:    recorder,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// Login authenticates a username/password pair and issues a session token.
// Every outcome leaves exactly one audit record. Unknown usernames and wrong
// passwords produce the same error type, so callers cannot probe for which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*domain.LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeBadCredential).Inc()
			s.recorder.Record(ctx, &domain.AuditRecord{
				ActorName: username,
				Action:    domain.ActionLoginFailed,
				Target:    username,
				Details:   "unknown username",
				IPAddress: ip,
			})
			return nil, &domain.BadCredentialError{}
		}
		return nil, err
	}

	if !u.Active {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInactive).Inc()
		s.recorder.Record(ctx, &domain.AuditRecord{
			ActorID:   &u.ID,
			ActorName: u.Username,
			Action:    domain.ActionLoginInactive,
			Target:    u.Username,
			IPAddress: ip,
		})
		return nil, &domain.BadCredentialError{}
	}

	if err := s.lockout.Admit(ctx, u); err != nil {
		var locked *domain.LockedError
		if errors.As(err, &locked) {
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeLocked).Inc()
			s.recorder.Record(ctx, &domain.AuditRecord{
				ActorID:   &u.ID,
				ActorName: u.Username,
				Action:    domain.ActionLoginLocked,
				Target:    u.Username,
				Details:   fmt.Sprintf("locked until %s", locked.Until.UTC().Format(time.RFC3339)),
				IPAddress: ip,
			})
		}
		return nil, err
	}

	if err := s.credentials.Verify(ctx, u.ID, password); err != nil {
		var bad *domain.BadCredentialError
		if !errors.As(err, &bad) {
			return nil, err
		}

		until, lockErr := s.lockout.RecordFailure(ctx, u.ID)
		if lockErr != nil {
			return nil, lockErr
		}
		details := "bad password"
		if until != nil {
			details = fmt.Sprintf("bad password, account locked until %s", until.UTC().Format(time.RFC3339))
		}
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeBadCredential).Inc()
		s.recorder.Record(ctx, &domain.AuditRecord{
			ActorID:   &u.ID,
			ActorName: u.Username,
			Action:    domain.ActionLoginFailed,
			Target:    u.Username,
			Details:   details,
			IPAddress: ip,
		})
		return nil, &domain.BadCredentialError{}
	}

	if err := s.lockout.RecordSuccess(ctx, u.ID); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Second)
	if err := s.users.SetLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &now

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.recorder.Record(ctx, &domain.AuditRecord{
		ActorID:   &u.ID,
		ActorName: u.Username,
		Action:    domain.ActionLogin,
		Target:    u.Username,
		IPAddress: ip,
	})
	return &domain.LoginResult{User: u, Token: token}, nil
}

// Logout records the end of a session. Tokens are stateless, so this is an
// audit-only operation.
func (s *AuthService) Logout(ctx context.Context) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionLogout, p.Username, ""))
}

// ChangePassword lets a user rotate their own password after proving they
// know the current one. The new password must satisfy the policy.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.credentials.Verify(ctx, userID, current); err != nil {
		return err
	}
	if err := domain.ValidatePassword(newPassword, s.rules); err != nil {
		return err
	}
	if err := s.credentials.Set(ctx, userID, newPassword); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionPasswordChanged, u.Username, ""))
	return nil
}

// ResetPassword sets a new password for a user without knowing the old one,
// and clears any lockout. Administrative operation.
func (s *AuthService) ResetPassword(ctx context.Context, targetID, newPassword string) error {
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(newPassword, s.rules); err != nil {
		return err
	}
	if err := s.credentials.Set(ctx, targetID, newPassword); err != nil {
		return err
	}
	if err := s.lockout.Unlock(ctx, targetID); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionPasswordReset, u.Username, ""))
	return nil
}

// Unlock clears an account lock ahead of its expiry. Administrative operation.
func (s *AuthService) Unlock(ctx context.Context, targetID string) error {
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.lockout.Unlock(ctx, targetID); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionUserUpdated, u.Username, "account unlocked"))
	return nil
}

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(u *domain.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        domain.NewID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, domain.ErrAccessDenied("invalid session token: %v", err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrAccessDenied("invalid session token")
	}
	return claims, nil
}
