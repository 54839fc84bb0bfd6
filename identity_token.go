package campusgate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenResolver resolves recipient identity tokens to usernames without a
// round-trip to the identity provider. It understands two wire formats:
//
//   - a JWT whose claims carry the username (the identity provider's ID
//     token); the signature is NOT verified here — tokens reach the push
//     producer only after the caller's edge already authenticated them
//   - the legacy base64("username:email") form
//
// It satisfies the ResolveIdentityToken method of [IdentityProvider] and can
// back a provider implementation that delegates the remaining methods
// elsewhere.
type IDTokenResolver struct {
	parser *jwt.Parser
	// UsernameClaims are tried in order against the JWT claim set.
	UsernameClaims []string
}

// NewIDTokenResolver describes the newidtokenresolver operation and its observable behavior.
//
// NewIDTokenResolver may return an error when input validation, dependency calls, or security checks fail.
// NewIDTokenResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewIDTokenResolver() *IDTokenResolver {
	return &IDTokenResolver{
		parser:         jwt.NewParser(),
		UsernameClaims: []string{"cognito:username", "username", "sub"},
	}
}

// ResolveIdentityToken describes the resolveidentitytoken operation and its observable behavior.
//
// ResolveIdentityToken may return an error when input validation, dependency calls, or security checks fail.
// ResolveIdentityToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *IDTokenResolver) ResolveIdentityToken(_ context.Context, identityToken string) (string, error) {
	if identityToken == "" {
		return "", errors.New("empty identity token")
	}

	if username, err := r.resolveJWT(identityToken); err == nil {
		return username, nil
	}
	return decodeLegacyIdentityToken(identityToken)
}

func (r *IDTokenResolver) resolveJWT(identityToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(identityToken, claims); err != nil {
		return "", err
	}

	for _, name := range r.UsernameClaims {
		if value, ok := claims[name].(string); ok && value != "" {
			return value, nil
		}
	}
	return "", errors.New("no username claim in identity token")
}

// decodeLegacyIdentityToken handles the base64("username:email") format still
// emitted by older clients.
func decodeLegacyIdentityToken(identityToken string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(identityToken)
	if err != nil {
		return "", fmt.Errorf("failed to decode identity token: %w", err)
	}

	username, _, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return "", errors.New(`invalid identity token format, expected "username:email"`)
	}
	return username, nil
}
