// Package auth issues and verifies sessions for office staff.
package auth

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = apperrors.New(apperrors.CodeUnauthorized, "Invalid login credentials")
	ErrEmailNotConfirmed  = apperrors.New(apperrors.CodeUnauthorized, "Email not confirmed")
	ErrInvalidToken       = apperrors.New(apperrors.CodeUnauthorized, "Sesión inválida o vencida")
	ErrAlreadyRegistered  = apperrors.New(apperrors.CodeAlreadyRegistered, "Este correo ya tiene una cuenta registrada")
)

type Config struct {
	Secret      []byte
	SessionTTL  time.Duration
	InviteTTL   time.Duration
	RecoveryTTL time.Duration
	// AppBaseURL prefixes the links placed in invite and recovery mails.
	AppBaseURL string
	Now        func() time.Time
}

type Provider struct {
	users    *repository.AuthUserRepository
	sessions *repository.AuthSessionRepository
	mailer   mail.Mailer
	cfg      Config
	log      *logrus.Entry
	events   *hub
}

func NewProvider(db *sql.DB, mailer mail.Mailer, cfg Config, log *logrus.Entry) *Provider {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.InviteTTL <= 0 {
		cfg.InviteTTL = 7 * 24 * time.Hour
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = time.Hour
	}
	cfg.AppBaseURL = strings.TrimRight(cfg.AppBaseURL, "/")
	return &Provider{
		users:    repository.NewAuthUserRepository(db),
		sessions: repository.NewAuthSessionRepository(db),
		mailer:   mailer,
		cfg:      cfg,
		log:      log,
		events:   newHub(),
	}
}

// Subscribe streams session events until cancel is called.
func (p *Provider) Subscribe() (<-chan SessionEvent, func()) {
	return p.events.subscribe()
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	const op = "auth.SignIn"

	user, err := p.users.GetByEmail(ctx, email)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}
	// Invited accounts have no password until the invite or recovery link is redeemed.
	if !user.Confirmed() {
		return models.Session{}, ErrEmailNotConfirmed
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		p.log.WithField("operation", op).WithField("email", user.Email).Info("rejected sign in")
		return models.Session{}, ErrInvalidCredentials
	}

	session, err := p.issue(ctx, user, models.PurposeSession, p.cfg.SessionTTL, "")
	if err != nil {
		return models.Session{}, err
	}
	p.publish(EventSignedIn, user)
	return session, nil
}

// SignOut revokes the token's session. Already revoked tokens are accepted.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := parseToken(p.cfg.Secret, token, p.cfg.Now)
	if err != nil {
		return ErrInvalidToken
	}
	if err := p.sessions.Revoke(ctx, claims.ID, p.cfg.Now()); err != nil {
		return err
	}
	p.events.publish(SessionEvent{Type: EventSignedOut, UserID: claims.Subject, Email: claims.Email, At: p.cfg.Now()})
	return nil
}

// CurrentSession resolves a bearer token issued by SignIn.
func (p *Provider) CurrentSession(ctx context.Context, token string) (models.Session, error) {
	session, err := p.verify(ctx, token)
	if err != nil {
		return models.Session{}, err
	}
	if session.Purpose != models.PurposeSession {
		return models.Session{}, ErrInvalidToken
	}
	return session, nil
}

// RequestPasswordReset mails a recovery link. Unknown addresses succeed
// silently so callers cannot probe for accounts.
func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "auth.RequestPasswordReset"

	user, err := p.users.GetByEmail(ctx, email)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		p.log.WithField("operation", op).Debug("reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	session, err := p.issue(ctx, user, models.PurposeRecovery, p.cfg.RecoveryTTL, "")
	if err != nil {
		return err
	}
	return p.mailer.Send(ctx, mail.Message{
		To:      user.Email,
		Subject: "Restablecer contraseña",
		Body:    "Para elegir una nueva contraseña ingresá a:\n" + p.link("/reset-password", session.Token, models.PurposeRecovery),
	})
}

type UpdateResult struct {
	Session models.Session
	// EmployeeID is set when an invite link was redeemed or when the update
	// confirmed an account linked to an employee.
	EmployeeID string
}

// UpdateCurrentUser sets a new password for the token's user and confirms the
// account. Invite and recovery links are single use; redeeming one signs the
// user in with a fresh session.
func (p *Provider) UpdateCurrentUser(ctx context.Context, token, password string) (UpdateResult, error) {
	if len(password) < MinPasswordLength {
		fields := apperrors.Fields{}
		fields.Invalid("password", "La contraseña debe tener al menos 6 caracteres")
		return UpdateResult{}, fields.Err()
	}

	current, err := p.verify(ctx, token)
	if err != nil {
		return UpdateResult{}, err
	}
	before, err := p.users.Get(ctx, current.UserID)
	if err != nil {
		return UpdateResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return UpdateResult{}, apperrors.Wrap(apperrors.CodeStore, "hash password", err)
	}
	now := p.cfg.Now()
	if err := p.users.SetPassword(ctx, current.UserID, string(hash), now); err != nil {
		return UpdateResult{}, err
	}

	user, err := p.users.Get(ctx, current.UserID)
	if err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{Session: current}
	if current.Purpose != models.PurposeSession {
		if err := p.sessions.Revoke(ctx, current.SessionID, now); err != nil {
			return UpdateResult{}, err
		}
		if current.Purpose == models.PurposeRecovery {
			p.publish(EventPasswordRecovery, user)
		}
		switch {
		case current.Purpose == models.PurposeInvite && current.EmployeeID != nil:
			result.EmployeeID = *current.EmployeeID
		case !before.Confirmed() && before.EmployeeID != nil:
			result.EmployeeID = *before.EmployeeID
		}
		if result.Session, err = p.issue(ctx, user, models.PurposeSession, p.cfg.SessionTTL, ""); err != nil {
			return UpdateResult{}, err
		}
	}

	p.publish(EventUserUpdated, user)
	return result, nil
}

type Invitation struct {
	UserID string
	Token  string
	Link   string
}

type inviteOptions struct {
	admin bool
}

type InviteOption func(*inviteOptions)

// AsAdmin marks the invited account as an office administrator.
func AsAdmin() InviteOption {
	return func(o *inviteOptions) { o.admin = true }
}

// InviteUserByEmail creates an unconfirmed account and an invite link bound to
// employeeID. Inviting an address that is still unconfirmed replaces the
// previous link; confirmed addresses fail with ErrAlreadyRegistered.
func (p *Provider) InviteUserByEmail(ctx context.Context, email, name, employeeID string, opts ...InviteOption) (Invitation, error) {
	const op = "auth.InviteUserByEmail"

	var o inviteOptions
	for _, opt := range opts {
		opt(&o)
	}

	var employeeRef *string
	if employeeID != "" {
		employeeRef = &employeeID
	}

	user, err := p.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Confirmed() {
			return Invitation{}, ErrAlreadyRegistered
		}
		if err := p.sessions.RevokeUserPurpose(ctx, user.ID, models.PurposeInvite, p.cfg.Now()); err != nil {
			return Invitation{}, err
		}
	case apperrors.Is(err, apperrors.CodeNotFound):
		user = models.AuthUser{Email: email, DisplayName: name, EmployeeID: employeeRef, IsAdmin: o.admin}
		if err := p.users.Create(ctx, &user); err != nil {
			if apperrors.Is(err, apperrors.CodeAlreadyRegistered) {
				return Invitation{}, ErrAlreadyRegistered
			}
			return Invitation{}, err
		}
	default:
		return Invitation{}, err
	}

	session, err := p.issue(ctx, user, models.PurposeInvite, p.cfg.InviteTTL, employeeID)
	if err != nil {
		return Invitation{}, err
	}

	p.log.WithField("operation", op).WithField("user_id", user.ID).Info("invite issued")
	return Invitation{
		UserID: user.ID,
		Token:  session.Token,
		Link:   p.link("/setup-password", session.Token, models.PurposeInvite),
	}, nil
}

// UserExists reports whether an account is registered for email.
func (p *Provider) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := p.users.GetByEmail(ctx, email)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *Provider) verify(ctx context.Context, token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrInvalidToken
	}
	claims, err := parseToken(p.cfg.Secret, token, p.cfg.Now)
	if err != nil {
		return models.Session{}, ErrInvalidToken
	}

	stored, err := p.sessions.Get(ctx, claims.ID)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	if stored.RevokedAt != nil || stored.UserID != claims.Subject || stored.Purpose != claims.Purpose {
		return models.Session{}, ErrInvalidToken
	}

	user, err := p.users.Get(ctx, claims.Subject)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}

	session := toSession(user, claims.ID, token, claims.Purpose, stored.ExpiresAt)
	if claims.EmployeeID != "" {
		employeeID := claims.EmployeeID
		session.EmployeeID = &employeeID
	}
	return session, nil
}

func (p *Provider) issue(ctx context.Context, user models.AuthUser, purpose models.TokenPurpose, ttl time.Duration, employeeID string) (models.Session, error) {
	now := p.cfg.Now()
	stored := models.AuthSession{UserID: user.ID, Purpose: purpose, ExpiresAt: now.Add(ttl)}
	if err := p.sessions.Create(ctx, &stored); err != nil {
		return models.Session{}, err
	}

	token, err := signToken(p.cfg.Secret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			ID:        stored.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(stored.ExpiresAt),
		},
		Purpose:    purpose,
		Email:      user.Email,
		Name:       user.DisplayName,
		EmployeeID: employeeID,
	})
	if err != nil {
		return models.Session{}, apperrors.Wrap(apperrors.CodeStore, "sign token", err)
	}

	session := toSession(user, stored.ID, token, purpose, stored.ExpiresAt)
	if employeeID != "" {
		session.EmployeeID = &employeeID
	}
	return session, nil
}

func (p *Provider) link(path, token string, purpose models.TokenPurpose) string {
	v := url.Values{}
	v.Set("access_token", token)
	v.Set("type", string(purpose))
	return p.cfg.AppBaseURL + path + "#" + v.Encode()
}

func (p *Provider) publish(t EventType, user models.AuthUser) {
	p.events.publish(SessionEvent{Type: t, UserID: user.ID, Email: user.Email, At: p.cfg.Now()})
}

func toSession(user models.AuthUser, id, token string, purpose models.TokenPurpose, expiresAt time.Time) models.Session {
	return models.Session{
		Token:       token,
		SessionID:   id,
		Purpose:     purpose,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		EmployeeID:  user.EmployeeID,
		IsAdmin:     user.IsAdmin,
		ExpiresAt:   expiresAt,
	}
}
