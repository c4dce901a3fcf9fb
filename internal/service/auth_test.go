package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"qa-assignment-api/internal/core/auth"
	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/repo"
	"qa-assignment-api/pkg/utils"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	svc   *AuthService
	users *repo.UserRepo
	jwt   *auth.JWTer
	clock *clock
	log   *zap.Logger
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	users := repo.NewUserRepo(hasher, c.Now)
	j, err := auth.NewJWTer([]byte("svc-secret"), "", "HS256", 30*time.Minute)
	require.NoError(t, err)
	j.Now = c.Now

	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)
	return fixture{
		svc:   NewAuthService(users, j, hasher, l),
		users: users,
		jwt:   j,
		clock: c,
		log:   l,
		logs:  logs,
	}
}

func TestRegisterLoginWhoAmI(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "jane@buggy.com", u.Email)

	res, err := f.svc.Login("jane@buggy.com", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, res.TokenType)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, u.ID, res.User.ID)

	me, err := f.svc.WhoAmI(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Jane", me.Name)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("dup@buggy.com", "Password123!", "Dup")
	require.NoError(t, err)

	_, err = f.svc.Register("dup@buggy.com", "Other123!", "Dup2")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Equal(t, 1, f.users.Count())
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)

	_, wrongPw := f.svc.Login("jane@buggy.com", "nope")
	_, unknown := f.svc.Login("ghost@buggy.com", "Password123!")

	assert.ErrorIs(t, wrongPw, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_NeverLogsSecrets(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)
	res, err := f.svc.Login("jane@buggy.com", "Password123!")
	require.NoError(t, err)
	_, _ = f.svc.Login("jane@buggy.com", "WrongPassword!")

	for _, e := range f.logs.All() {
		for k, v := range e.ContextMap() {
			s, _ := v.(string)
			assert.NotContains(t, s, "Password123!", k)
			assert.NotContains(t, s, res.AccessToken, k)
		}
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)
	res, err := f.svc.Login("jane@buggy.com", "Password123!")
	require.NoError(t, err)

	pair, err := f.svc.Refresh(res.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.AccessToken, pair.AccessToken)
	assert.Equal(t, TokenTypeBearer, pair.TokenType)

	me, err := f.svc.WhoAmI(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "jane@buggy.com", me.Email)

	_, err = f.svc.Refresh("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestWhoAmI_Expired(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)
	res, err := f.svc.Login("jane@buggy.com", "Password123!")
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(31 * time.Minute)
	_, err = f.svc.WhoAmI(res.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = f.svc.Refresh(res.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestWhoAmI_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	tok, err := f.jwt.Issue("ghost@buggy.com", 0)
	require.NoError(t, err)

	_, err = f.svc.WhoAmI(tok)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(string, time.Duration) (string, error) { return "", f.err }
func (f failingIssuer) Verify(string) (string, error)               { return "", f.err }
func (f failingIssuer) Refresh(string) (string, error)              { return "", f.err }

func TestLogin_IssueError(t *testing.T) {
	users := repo.NewUserRepo(utils.NewPasswordHasher(bcrypt.MinCost), nil)
	_, err := users.Register("a@b.c", "password", "A")
	require.NoError(t, err)

	boom := errors.New("boom")
	svc := NewAuthService(users, failingIssuer{err: boom}, nil, nil)

	_, err = svc.Login("a@b.c", "password")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Refresh("x")
	assert.ErrorIs(t, err, boom)
}

func TestLogin_WarnsOnLegacyHash(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register("jane@buggy.com", "Password123!", "Jane")
	require.NoError(t, err)

	stricter := NewAuthService(f.users, f.jwt, utils.NewPasswordHasher(bcrypt.MinCost+1), f.log)
	_, err = stricter.Login("jane@buggy.com", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("password hash uses an outdated scheme").Len())
}

func TestLogin_ImportedLegacyAccount(t *testing.T) {
	f := newFixture(t)
	const passlibHash = "$pbkdf2-sha256$29000$bGVnYWN5LXNhbHQtMDAwMQ$G8/dOMipTE8VokOFkOfd3PpKIqOd8cKolgb3r7qTwFM"
	_, err := f.users.Import(domain.UserImport{Email: "old@buggy.com", Name: "Old Timer", PasswordHash: passlibHash})
	require.NoError(t, err)

	res, err := f.svc.Login("old@buggy.com", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, "old@buggy.com", res.User.Email)
	assert.NotEmpty(t, res.AccessToken)

	warned := f.logs.FilterMessage("password hash uses an outdated scheme")
	require.Equal(t, 1, warned.Len())
	assert.Equal(t, int64(res.User.ID), warned.All()[0].ContextMap()["id"])

	_, err = f.svc.Login("old@buggy.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
