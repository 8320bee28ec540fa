package account

import (
	"context"
	"testing"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/keyref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

func (m *mockSessionStore) DisableByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSnapshotStore struct{ mock.Mock }

func (m *mockSnapshotStore) Put(ctx context.Context, s *domain.FieldSnapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSnapshotStore) Get(ctx context.Context, userID string) (*domain.FieldSnapshot, error) {
	args := m.Called(ctx, userID)
	if s, _ := args.Get(0).(*domain.FieldSnapshot); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSnapshotStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// fakeSigner accepts exactly one token value.
type fakeSigner struct{ valid string }

func (f *fakeSigner) Make(u *domain.User) string            { return f.valid }
func (f *fakeSigner) Check(u *domain.User, tok string) bool { return tok == f.valid }

type fakeJWT struct{}

func (fakeJWT) Sign(userID, role, sessionID string) (string, error) { return "bearer-" + userID, nil }

// --- helpers ---

type deps struct {
	users     *mockUserStore
	sessions  *mockSessionStore
	snapshots *mockSnapshotStore
	mailer    *mockMailer
	signer    *fakeSigner
}

func newTestService() (Service, *deps) {
	d := &deps{
		users:     &mockUserStore{},
		sessions:  &mockSessionStore{},
		snapshots: &mockSnapshotStore{},
		mailer:    &mockMailer{},
		signer:    &fakeSigner{valid: "good-token"},
	}
	svc := NewService(ServiceDeps{
		UserRepo:        d.users,
		SessionRepo:     d.sessions,
		SnapshotRepo:    d.snapshots,
		Signer:          d.signer,
		JWTProvider:     fakeJWT{},
		Mailer:          d.mailer,
		RefreshTokenDur: 24 * time.Hour,
		SnapshotTTL:     time.Hour,
		BaseURL:         "http://localhost:3000",
	})
	return svc, d
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_CreatesTentativeUserAndMails(t *testing.T) {
	svc, d := newTestService()
	d.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	d.users.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && !u.Active && !u.EmailVerified && u.Role == domain.RoleUser
	})).Return(nil)
	d.mailer.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	u, out, err := svc.Register(context.Background(), map[string]any{
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password1":  "sw0rdfish9",
		"password2":  "sw0rdfish9",
	})
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.Equal(t, "Alice", u.FirstName)
	assert.NotEmpty(t, u.PasswordHash)
	d.users.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _ := newTestService()
	_, out, err := svc.Register(context.Background(), map[string]any{
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password1":  "sw0rdfish9",
		"password2":  "different1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, out.Errors["password"], "The two password fields do not match.")
}

func TestRegister_PasswordMismatchStopsBeforeFieldChecks(t *testing.T) {
	svc, d := newTestService()
	_, out, err := svc.Register(context.Background(), map[string]any{
		"email":     "alice@example.com",
		"bogus":     "x",
		"password1": "sw0rdfish9",
		"password2": "different1",
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Equal(t, []string{"The two password fields do not match."}, out.Errors["password"])
	assert.Len(t, out.Errors, 1)
	assert.Empty(t, out.Ignored)
	d.users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_WeakPasswords(t *testing.T) {
	svc, _ := newTestService()
	_, out, err := svc.Register(context.Background(), map[string]any{
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password1":  "1234567",
		"password2":  "1234567",
	})
	require.Error(t, err)
	assert.Contains(t, out.Errors["password"], "Password must be at least 8 characters long.")
	assert.Contains(t, out.Errors["password"], "Password must not be entirely numeric.")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, d := newTestService()
	d.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{UserID: "u1"}, nil)
	_, _, err := svc.Register(context.Background(), map[string]any{
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password1":  "sw0rdfish9",
		"password2":  "sw0rdfish9",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{
		UserID: "u1", Email: "a@b.c", Role: domain.RoleUser,
		Active: true, EmailVerified: true,
		PasswordHash: hashOf(t, "sw0rdfish9"),
	}
	d.users.On("GetByEmail", mock.Anything, "a@b.c").Return(u, nil)
	d.sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	sess, bearer, refresh, err := svc.Login(context.Background(), "a@b.c", "sw0rdfish9")
	require.NoError(t, err)
	assert.Equal(t, "bearer-u1", bearer)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, u, sess.User)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Active: true, EmailVerified: true, PasswordHash: hashOf(t, "sw0rdfish9")}
	d.users.On("GetByEmail", mock.Anything, "a@b.c").Return(u, nil)

	_, _, _, err := svc.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnverifiedResendsConfirmation(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", PasswordHash: hashOf(t, "sw0rdfish9")}
	d.users.On("GetByEmail", mock.Anything, "a@b.c").Return(u, nil)
	d.mailer.On("SendEmail", "a@b.c", mock.Anything, mock.Anything).Return(nil)

	_, _, _, err := svc.Login(context.Background(), "a@b.c", "sw0rdfish9")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	d.mailer.AssertExpectations(t)
}

// --- Verify ---

func verifyArgs(action, userID, token string) (string, string) {
	return "Key64 " + keyref.Encode(action, userID), "Token " + token
}

func TestVerify_RegisterSuccessActivates(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c"}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.users.On("Update", mock.Anything, "u1",
		map[string]interface{}{"active": true, "email_verified": true}).Return(nil)

	k, tok := verifyArgs(keyref.ActionRegister, "u1", "good-token")
	res, err := svc.Verify(context.Background(), k, tok)
	require.NoError(t, err)
	assert.True(t, res.User.Active)
	assert.True(t, res.User.EmailVerified)
	d.users.AssertExpectations(t)
}

func TestVerify_RegisterFailureDeletesTentativeUser(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", Active: false}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.users.On("Delete", mock.Anything, "u1").Return(nil)

	k, tok := verifyArgs(keyref.ActionRegister, "u1", "bad-token")
	_, err := svc.Verify(context.Background(), k, tok)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.users.AssertCalled(t, "Delete", mock.Anything, "u1")
}

func TestVerify_RegisterFailureKeepsActiveUser(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", Active: true}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)

	k, tok := verifyArgs(keyref.ActionRegister, "u1", "bad-token")
	_, err := svc.Verify(context.Background(), k, tok)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.users.AssertNotCalled(t, "Delete", mock.Anything, "u1")
}

func TestVerify_UpdateFailureRestoresSnapshot(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "new@b.c", Active: true}
	snap := &domain.FieldSnapshot{
		UserID:    "u1",
		Fields:    map[string]string{"email": "old@b.c", "email_verified": "true"},
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.snapshots.On("Get", mock.Anything, "u1").Return(snap, nil)
	d.users.On("Update", mock.Anything, "u1",
		map[string]interface{}{"email": "old@b.c", "email_verified": true}).Return(nil)
	d.snapshots.On("Delete", mock.Anything, "u1").Return(nil)

	k, tok := verifyArgs(keyref.ActionUpdate, "u1", "bad-token")
	_, err := svc.Verify(context.Background(), k, tok)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.users.AssertExpectations(t)
	d.snapshots.AssertExpectations(t)
}

func TestVerify_UpdateSuccessDropsSnapshot(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "new@b.c", Active: true}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.users.On("Update", mock.Anything, "u1",
		map[string]interface{}{"email_verified": true}).Return(nil)
	d.snapshots.On("Delete", mock.Anything, "u1").Return(nil)

	k, tok := verifyArgs(keyref.ActionUpdate, "u1", "good-token")
	res, err := svc.Verify(context.Background(), k, tok)
	require.NoError(t, err)
	assert.True(t, res.User.EmailVerified)
	d.snapshots.AssertExpectations(t)
}

func TestVerify_TokenActionReissuesCredentials(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", Role: domain.RoleUser, Active: true, EmailVerified: true}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.sessions.On("DisableByUser", mock.Anything, "u1").Return(nil)
	d.sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	k, tok := verifyArgs(keyref.ActionToken, "u1", "good-token")
	res, err := svc.Verify(context.Background(), k, tok)
	require.NoError(t, err)
	assert.Equal(t, "bearer-u1", res.Bearer)
	assert.NotEmpty(t, res.Refresh)
	d.sessions.AssertExpectations(t)
}

func TestVerify_RejectsMalformedSyntax(t *testing.T) {
	svc, _ := newTestService()
	cases := []struct{ key64, token string }{
		{"no-keyword", "Token t"},
		{"Key64 a b", "Token t"},
		{"Key64 a", "token t"},
		{"Key64 a", "Token"},
	}
	for _, tc := range cases {
		_, err := svc.Verify(context.Background(), tc.key64, tc.token)
		assert.ErrorIs(t, err, domain.ErrBadRequest, "key64=%q token=%q", tc.key64, tc.token)
	}
}

// --- Update ---

func TestUpdate_EmailChangeSnapshotsAndUnverifies(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{
		UserID: "u1", Email: "old@b.c", FirstName: "Alice", LastName: "Smith",
		Active: true, EmailVerified: true,
	}
	updated := &domain.User{
		UserID: "u1", Email: "new@b.c", FirstName: "Alice", LastName: "Smith",
		Active: true, EmailVerified: false,
	}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil).Once()
	d.snapshots.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.FieldSnapshot) bool {
		return s.UserID == "u1" && s.Fields["email"] == "old@b.c" && s.Fields["email_verified"] == "true"
	})).Return(nil)
	d.users.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["email"] == "new@b.c" && m["email_verified"] == false
	})).Return(nil)
	d.users.On("Get", mock.Anything, "u1").Return(updated, nil)
	d.mailer.On("SendEmail", "new@b.c", mock.Anything, mock.Anything).Return(nil)

	fresh, out, err := svc.Update(context.Background(), "u1", map[string]any{"email": "new@b.c"})
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.False(t, fresh.EmailVerified)
	d.snapshots.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
}

func TestUpdate_NoopRejected(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", FirstName: "Alice", LastName: "Smith"}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)

	_, out, err := svc.Update(context.Background(), "u1", map[string]any{"first_name": "Alice"})
	require.Error(t, err)
	assert.Contains(t, out.Warnings["detail"], "Nothing new")
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_PlainFieldNoSnapshot(t *testing.T) {
	svc, d := newTestService()
	u := &domain.User{UserID: "u1", Email: "a@b.c", FirstName: "Alice", LastName: "Smith", EmailVerified: true}
	updated := &domain.User{UserID: "u1", Email: "a@b.c", FirstName: "Alicia", LastName: "Smith", EmailVerified: true}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil).Once()
	d.users.On("Update", mock.Anything, "u1", map[string]interface{}{"first_name": "Alicia"}).Return(nil)
	d.users.On("Get", mock.Anything, "u1").Return(updated, nil)

	fresh, _, err := svc.Update(context.Background(), "u1", map[string]any{"first_name": "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", fresh.FirstName)
	d.snapshots.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Logout / Refresh ---

func TestLogout_AlreadyRevoked(t *testing.T) {
	svc, d := newTestService()
	d.sessions.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	err := svc.Logout(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrExpectationFailed)
}

func TestLogout_DisablesSession(t *testing.T) {
	svc, d := newTestService()
	d.sessions.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: true}, nil)
	d.sessions.On("Update", mock.Anything, "s1", map[string]interface{}{"enable": false}).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "s1"))
	d.sessions.AssertExpectations(t)
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, d := newTestService()
	old := &domain.Session{
		SessionID: "s1", UserID: "u1", Enable: true,
		RefreshToken: "rt-old", RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	u := &domain.User{UserID: "u1", Role: domain.RoleUser, Active: true, EmailVerified: true}
	d.sessions.On("GetByRefreshToken", mock.Anything, "rt-old").Return(old, nil)
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.sessions.On("Update", mock.Anything, "s1", map[string]interface{}{"enable": false}).Return(nil)
	d.sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	sess, bearer, refresh, err := svc.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.NotEqual(t, "rt-old", refresh)
	assert.Equal(t, "bearer-u1", bearer)
	assert.NotEqual(t, "s1", sess.SessionID)
}

func TestRefresh_ExpiredRejected(t *testing.T) {
	svc, d := newTestService()
	old := &domain.Session{
		SessionID: "s1", UserID: "u1", Enable: true,
		RefreshToken: "rt-old", RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	d.sessions.On("GetByRefreshToken", mock.Anything, "rt-old").Return(old, nil)

	_, _, _, err := svc.Refresh(context.Background(), "rt-old")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
