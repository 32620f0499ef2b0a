package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign("42", "admin")
	require.NoError(t, err)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", uid)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Sign("42", "viewer")
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	_, err := NewJWT("secret").Verify("not.a.token")
	assert.Error(t, err)
}

func TestRegistry_SeededUsersCanLogin(t *testing.T) {
	r, err := NewRegistry(DefaultSeedUsers())
	require.NoError(t, err)

	u, err := r.Authenticate("admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	_, err = r.Authenticate("admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.Authenticate("nobody@example.com", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	u, err := r.Register("Ana", "Ana@Example.com ", "s3cret99", "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "viewer", u.Role)
	assert.NotEmpty(t, u.ID)

	_, err = r.Register("Ana 2", "ana@example.com", "another99", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = r.Register("Short", "short@example.com", "abc", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, ok := r.Get(u.ID)
	require.True(t, ok)
	assert.Equal(t, "Ana", got.Name)
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := HashPassword("p@ssw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ssw0rd", hash)

	assert.True(t, ComparePassword(hash, "p@ssw0rd"))
	assert.False(t, ComparePassword(hash, "p@ssw0rd!"))
}
