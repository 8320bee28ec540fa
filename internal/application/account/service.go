package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
	"github.com/sellpoint/api/internal/pkg/keyref"
	pkgtoken "github.com/sellpoint/api/internal/pkg/token"
	"github.com/sellpoint/api/internal/precheck"
	"golang.org/x/crypto/bcrypt"
)

// VerifyResult is what a successful confirmation yields. Bearer and
// Refresh are set only for the "token" action, which reissues credentials.
type VerifyResult struct {
	Action  string
	User    *domain.User
	Session *domain.Session
	Bearer  string
	Refresh string
}

type Service interface {
	Login(ctx context.Context, email, password string) (*domain.Session, string, string, error)
	Register(ctx context.Context, raw map[string]any) (*domain.User, precheck.Outcome, error)
	Update(ctx context.Context, userID string, raw map[string]any) (*domain.User, precheck.Outcome, error)
	RequestToken(ctx context.Context, userID string) error
	Verify(ctx context.Context, key64Value, tokenValue string) (*VerifyResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, string, string, error)
	Logout(ctx context.Context, sessionID string) error
	LookMe(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	DisableByUser(ctx context.Context, userID string) error
}

type snapshotStore interface {
	Put(ctx context.Context, s *domain.FieldSnapshot) error
	Get(ctx context.Context, userID string) (*domain.FieldSnapshot, error)
	Delete(ctx context.Context, userID string) error
}

// proofSigner issues and checks the state-bound tokens mailed to users.
type proofSigner interface {
	Make(u *domain.User) string
	Check(u *domain.User, token string) bool
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	users           userStore
	sessions        sessionStore
	snapshots       snapshotStore
	signer          proofSigner
	jwtProvider     jwtSigner
	mailer          mailer
	refreshTokenDur time.Duration
	snapshotTTL     time.Duration
	baseURL         string
}

type ServiceDeps struct {
	UserRepo        userStore
	SessionRepo     sessionStore
	SnapshotRepo    snapshotStore
	Signer          proofSigner
	JWTProvider     jwtSigner
	Mailer          mailer
	RefreshTokenDur time.Duration
	SnapshotTTL     time.Duration
	BaseURL         string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.UserRepo,
		sessions:        deps.SessionRepo,
		snapshots:       deps.SnapshotRepo,
		signer:          deps.Signer,
		jwtProvider:     deps.JWTProvider,
		mailer:          deps.Mailer,
		refreshTokenDur: deps.RefreshTokenDur,
		snapshotTTL:     deps.SnapshotTTL,
		baseURL:         deps.BaseURL,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*domain.Session, string, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Active || !u.EmailVerified {
		// The confirmation mail is resent on every rejected login so a user
		// whose original token expired can still finish verification.
		if err := s.sendVerification(u, keyref.ActionLogin); err != nil {
			slog.Warn("could not send login verification email", "user_id", u.UserID, "err", err)
		}
		return nil, "", "", fmt.Errorf("email not verified, confirmation resent: %w", domain.ErrForbidden)
	}
	return s.issueSession(ctx, u)
}

// Register runs the create pipeline over the submitted fields and stores a
// tentative user: inactive and unverified until the mailed token confirms.
func (s *service) Register(ctx context.Context, raw map[string]any) (*domain.User, precheck.Outcome, error) {
	password1, _ := raw["password1"].(string)
	password2, _ := raw["password2"].(string)
	delete(raw, "password1")
	delete(raw, "password2")

	// Password problems reject the submission before the field pipeline
	// runs, so the response carries only the password messages.
	if msgs := passwordProblems(password1, password2); len(msgs) > 0 {
		out := precheck.Outcome{Errors: precheck.FieldErrors{}}
		for _, msg := range msgs {
			out.Errors.Add("password", msg)
		}
		return nil, out, fmt.Errorf("registration rejected: %w", domain.ErrBadRequest)
	}

	out := precheck.Run(raw, domain.UserSchema, precheck.ActionCreate, nil)
	if !out.OK() {
		return nil, out, fmt.Errorf("registration rejected: %w", domain.ErrBadRequest)
	}

	email := asString(out.Cleaned["email"])
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, out, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, out, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		FirstName:    asString(out.Cleaned["first_name"]),
		LastName:     asString(out.Cleaned["last_name"]),
		Company:      asString(out.Cleaned["company"]),
		Position:     asString(out.Cleaned["position"]),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, out, err
	}
	if err := s.sendVerification(u, keyref.ActionRegister); err != nil {
		return nil, out, err
	}
	return u, out, nil
}

// Update runs the partial-update pipeline over the personal fields. An
// email change is risky: the previous values are snapshotted, the verified
// flag is dropped and a fresh confirmation is mailed to the new address.
func (s *service) Update(ctx context.Context, userID string, raw map[string]any) (*domain.User, precheck.Outcome, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, precheck.Outcome{}, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	out := precheck.Run(raw, domain.UserSchema, precheck.ActionPartialUpdate, u)
	if !out.OK() {
		return nil, out, fmt.Errorf("update rejected: %w", domain.ErrBadRequest)
	}

	updates := make(map[string]interface{}, len(out.Cleaned))
	for field, value := range out.Cleaned {
		updates[field] = value
	}

	if _, emailChanged := out.Cleaned["email"]; emailChanged {
		snap := &domain.FieldSnapshot{
			UserID:    u.UserID,
			Fields:    map[string]string{"email_verified": fmt.Sprintf("%t", u.EmailVerified)},
			ExpiresAt: time.Now().Add(s.snapshotTTL).Unix(),
		}
		for field := range out.Cleaned {
			if old, ok := u.Field(field); ok {
				snap.Fields[field] = old
			}
		}
		if err := s.snapshots.Put(ctx, snap); err != nil {
			return nil, out, err
		}
		updates["email_verified"] = false
		if err := s.users.Update(ctx, u.UserID, updates); err != nil {
			return nil, out, err
		}
		fresh, err := s.users.Get(ctx, u.UserID)
		if err != nil {
			return nil, out, err
		}
		// The token signs the post-update state, so confirming it proves
		// ownership of the new address.
		if err := s.sendVerification(fresh, keyref.ActionUpdate); err != nil {
			return nil, out, err
		}
		return fresh, out, nil
	}

	if err := s.users.Update(ctx, u.UserID, updates); err != nil {
		return nil, out, err
	}
	fresh, err := s.users.Get(ctx, u.UserID)
	if err != nil {
		return nil, out, err
	}
	return fresh, out, nil
}

// RequestToken mails a confirmation for the "token" action: once verified
// it revokes every session and reissues credentials.
func (s *service) RequestToken(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return s.sendVerification(u, keyref.ActionToken)
}

func (s *service) Verify(ctx context.Context, key64Value, tokenValue string) (*VerifyResult, error) {
	key64, err := parseKeyed("Key64", key64Value)
	if err != nil {
		return nil, err
	}
	token, err := parseKeyed("Token", tokenValue)
	if err != nil {
		return nil, err
	}
	action, userID, err := keyref.Decode(key64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	if !s.signer.Check(u, token) {
		return nil, s.verificationFailed(ctx, action, u)
	}

	switch action {
	case keyref.ActionRegister, keyref.ActionLogin:
		updates := map[string]interface{}{"active": true, "email_verified": true}
		if err := s.users.Update(ctx, u.UserID, updates); err != nil {
			return nil, err
		}
		u.Active, u.EmailVerified = true, true
		return &VerifyResult{Action: action, User: u}, nil

	case keyref.ActionUpdate:
		if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"email_verified": true}); err != nil {
			return nil, err
		}
		if err := s.snapshots.Delete(ctx, u.UserID); err != nil {
			slog.Warn("could not delete snapshot", "user_id", u.UserID, "err", err)
		}
		u.EmailVerified = true
		return &VerifyResult{Action: action, User: u}, nil

	case keyref.ActionToken:
		if err := s.sessions.DisableByUser(ctx, u.UserID); err != nil {
			return nil, err
		}
		sess, bearer, refresh, err := s.issueSession(ctx, u)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Action: action, User: u, Session: sess, Bearer: bearer, Refresh: refresh}, nil
	}
	return nil, fmt.Errorf("%w: %w", keyref.ErrUnrecognizedAction, domain.ErrBadRequest)
}

// verificationFailed applies the per-action failure effect: a tentative
// registration is discarded, a risky update is rolled back from its
// snapshot, the other actions leave no trace.
func (s *service) verificationFailed(ctx context.Context, action string, u *domain.User) error {
	switch action {
	case keyref.ActionRegister:
		if !u.Active {
			if err := s.users.Delete(ctx, u.UserID); err != nil {
				slog.Warn("could not delete tentative user", "user_id", u.UserID, "err", err)
			}
		}
		return fmt.Errorf("verification failed, registration discarded: %w", domain.ErrBadRequest)

	case keyref.ActionUpdate:
		snap, err := s.snapshots.Get(ctx, u.UserID)
		if err == nil && snap.UserID == u.UserID {
			restore := make(map[string]interface{}, len(snap.Fields))
			for field, value := range snap.Fields {
				if field == "email_verified" {
					restore[field] = value == "true"
					continue
				}
				restore[field] = value
			}
			if err := s.users.Update(ctx, u.UserID, restore); err != nil {
				return err
			}
		}
		if err := s.snapshots.Delete(ctx, u.UserID); err != nil {
			slog.Warn("could not delete snapshot", "user_id", u.UserID, "err", err)
		}
		return fmt.Errorf("verification failed, previous values restored: %w", domain.ErrBadRequest)
	}
	return fmt.Errorf("verification failed: %w", domain.ErrBadRequest)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.Session, string, string, error) {
	sess, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if !sess.Enable || sess.RefreshExpiresAt < time.Now().Unix() {
		return nil, "", "", fmt.Errorf("refresh token expired or revoked: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, "", "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.sessions.Update(ctx, sess.SessionID, map[string]interface{}{"enable": false}); err != nil {
		return nil, "", "", err
	}
	return s.issueSession(ctx, u)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", domain.ErrExpectationFailed)
	}
	if !sess.Enable {
		return fmt.Errorf("session already revoked: %w", domain.ErrExpectationFailed)
	}
	return s.sessions.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) LookMe(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.sessions.DisableByUser(ctx, userID); err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, userID)
}

func (s *service) issueSession(ctx context.Context, u *domain.User) (*domain.Session, string, string, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, "", "", err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, "", "", err
	}
	sess.User = u
	return sess, bearer, refreshToken, nil
}

func (s *service) sendVerification(u *domain.User, action string) error {
	key64 := keyref.Encode(action, u.UserID)
	token := s.signer.Make(u)
	body := fmt.Sprintf(
		"Confirm the %q action at %s/v1/auth/verify by submitting:\n\nkey64: Key64 %s\ntoken: Token %s\n",
		action, s.baseURL, key64, token,
	)
	return s.mailer.SendEmail(u.Email, "Confirm your email", body)
}

// parseKeyed extracts the payload from a "Key64 <value>" / "Token <value>"
// pair: exactly two space-separated words, the first being the keyword.
func parseKeyed(keyword, value string) (string, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 || parts[0] != keyword {
		return "", fmt.Errorf("expected %q followed by one value: %w", keyword, domain.ErrBadRequest)
	}
	return parts[1], nil
}

func passwordProblems(password1, password2 string) []string {
	var msgs []string
	if password1 == "" {
		return append(msgs, "Missing required field.")
	}
	if password1 != password2 {
		msgs = append(msgs, "The two password fields do not match.")
	}
	if len(password1) < 8 {
		msgs = append(msgs, "Password must be at least 8 characters long.")
	}
	numeric := true
	for _, r := range password1 {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		msgs = append(msgs, "Password must not be entirely numeric.")
	}
	return msgs
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
