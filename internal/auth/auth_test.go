package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

func headers(pairs ...string) dynval.Value {
	m := make(map[string]dynval.Value, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = dynval.String(pairs[i+1])
	}
	return dynval.Object(m)
}

func TestJWTVerifierAcceptsValidToken(t *testing.T) {
	secret := []byte("s3cret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString(secret)
	assert.NoError(t, err)

	v := NewJWTVerifier(secret)
	assert.True(t, v.Verify("default", headers("Authorization", "Bearer "+signed)))
}

func TestJWTVerifierDeniesMissingOrBadCredentials(t *testing.T) {
	v := NewJWTVerifier([]byte("s3cret"))
	assert.False(t, v.Verify("default", dynval.Null))
	assert.False(t, v.Verify("default", headers("Authorization", "Bearer not-a-jwt")))
	assert.False(t, v.Verify("default", headers("X-Other", "value")))
}

func TestBasicVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)
	v := NewBasicVerifier(map[string]string{"alice": string(hash)})

	ok := v.Verify("default", headers("Authorization", "Basic "+basicEncode("alice", "hunter2")))
	assert.True(t, ok)

	assert.False(t, v.Verify("default", headers("Authorization", "Basic "+basicEncode("alice", "wrong"))))
	assert.False(t, v.Verify("default", dynval.Null))
}

func basicEncode(user, pass string) string {
	return base64Encode(user + ":" + pass)
}
