package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(GenerateSecureSecret(), time.Hour)
	require.NoError(t, err)
	return ti
}

func TestIssueAndValidate(t *testing.T) {
	ti := newIssuer(t)
	op := &Operator{Username: "builder", ActorID: uuid.MustParse("1f0e2d3c-4b5a-4978-8a6b-5c4d3e2f1a0b")}

	token, err := ti.Issue(op)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "JWT из трёх частей")

	claims, err := ti.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "builder", claims.Username)
	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, op.ActorID, actor)
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	ti := newIssuer(t)
	other := newIssuer(t)
	op := &Operator{Username: "builder", ActorID: ActorIDFor("builder")}

	token, err := other.Issue(op)
	require.NoError(t, err)
	_, err = ti.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err = ti.Issue(op)
	require.NoError(t, err)
	ti.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = ti.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = ti.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	ti := newIssuer(t)
	claims := &Claims{ActorID: ActorIDFor("x").String(), Username: "x"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ti.Validate(token)
	assert.Error(t, err)
}

func TestNewTokenIssuerSecrets(t *testing.T) {
	_, err := NewTokenIssuer("", 0)
	assert.NoError(t, err, "пустой секрет генерируется")

	_, err = NewTokenIssuer("short", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenIssuer(strings.Repeat("k", 40), time.Minute)
	assert.NoError(t, err)
}

func TestMemoryOperatorRepo(t *testing.T) {
	repo := NewMemoryOperatorRepo()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	op, err := repo.Create("Builder", hash, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ActorIDFor("builder"), op.ActorID, "ActorID выводится из имени")

	_, err = repo.Create("builder", hash, uuid.Nil)
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := repo.ValidateCredentials("BUILDER", "s3cret")
	require.NoError(t, err)
	assert.False(t, got.LastLogin.IsZero())

	_, err = repo.ValidateCredentials("builder", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = repo.ValidateCredentials("ghost", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 1, repo.Len())
}

func TestActorIDForIsStable(t *testing.T) {
	assert.Equal(t, ActorIDFor("Alice"), ActorIDFor(" alice "))
	assert.NotEqual(t, ActorIDFor("alice"), ActorIDFor("bob"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, ValidatePasswordHash(hash))
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "S3cret"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	_, err = HashPassword(strings.Repeat("p", 73))
	assert.Error(t, err)

	assert.ErrorIs(t, ValidatePasswordHash("s3cret"), ErrInvalidPasswordHash)
	assert.False(t, CheckPassword("s3cret", "s3cret"), "открытый пароль вместо хеша не принимается")
}
