// Package auth implements the validation capability that internal/eval's
// Protect node consults. The Verifier interface is the engine-facing seam; the
// two implementations here (bearer JWT, basic-auth/htpasswd-style) are provided
// as ready collaborators but are not themselves part of the execution-engine
// core.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// ID identifies one configured auth provider within a blueprint; a Protect
// node references one by ID.
type ID string

// Verifier is the validation capability a Protect node consults. headers is
// the request's header set as a dynval.Value object (string -> string),
// matching evalctx.Context.Headers.
type Verifier interface {
	Verify(id ID, headers dynval.Value) bool
}

// Registry dispatches Verify calls to the named provider.
type Registry struct {
	providers map[ID]Verifier
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry { return &Registry{providers: make(map[ID]Verifier)} }

// Register installs v under id.
func (r *Registry) Register(id ID, v Verifier) { r.providers[id] = v }

// Verify implements Verifier by delegating to the registered provider;
// an unknown id denies by default.
func (r *Registry) Verify(id ID, headers dynval.Value) bool {
	v, ok := r.providers[id]
	if !ok {
		return false
	}
	return v.Verify(id, headers)
}

func headerValue(headers dynval.Value, name string) (string, bool) {
	v, ok := dynval.Select(headers, dynval.Path{name})
	if !ok || v.Kind() != dynval.KindString {
		return "", false
	}
	return v.StringVal(), true
}

// JWTVerifier validates a bearer token against a fixed HMAC secret,
// grounded on Hola-to-network_logistics_problem's passhash.JWTManager.
// Only the validation half is in scope here; token issuance belongs to the
// upstream identity provider, an external collaborator.
type JWTVerifier struct {
	Secret []byte
	Header string // default "Authorization"
}

// NewJWTVerifier constructs a JWTVerifier over secret, checking the
// Authorization header's "Bearer <token>" form.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{Secret: secret, Header: "Authorization"}
}

func (j *JWTVerifier) Verify(_ ID, headers dynval.Value) bool {
	header := j.Header
	if header == "" {
		header = "Authorization"
	}
	raw, ok := headerValue(headers, header)
	if !ok {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer"))
	if token == raw {
		return false // no "Bearer " prefix present
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return j.Secret, nil
	})
	return err == nil && parsed.Valid
}

// BasicVerifier validates HTTP Basic credentials against a preloaded
// username -> bcrypt-hash table (an already-parsed htpasswd file; parsing
// the file itself is the out-of-scope credential-source concern).
type BasicVerifier struct {
	Hashes map[string]string // username -> bcrypt hash
}

// NewBasicVerifier constructs a BasicVerifier over hashes.
func NewBasicVerifier(hashes map[string]string) *BasicVerifier {
	return &BasicVerifier{Hashes: hashes}
}

func (b *BasicVerifier) Verify(_ ID, headers dynval.Value) bool {
	raw, ok := headerValue(headers, "Authorization")
	if !ok || !strings.HasPrefix(raw, "Basic ") {
		return false
	}
	user, pass, ok := decodeBasic(strings.TrimPrefix(raw, "Basic "))
	if !ok {
		return false
	}
	hash, ok := b.Hashes[user]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}

func decodeBasic(encoded string) (user, pass string, ok bool) {
	decoded, err := base64Decode(encoded)
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(decoded, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
