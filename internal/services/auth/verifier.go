package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// SupabaseAudience is the "aud" claim on tokens issued to signed-in users
const SupabaseAudience = "authenticated"

// Verifier checks Supabase access tokens against the project's published keys
type Verifier struct {
	jwks     *JWKSManager
	jwksURL  string
	issuer   string
	audience string
}

// NewVerifier creates a new JWT verifier
func NewVerifier(jwks *JWKSManager, jwksURL, issuer string) *Verifier {
	return &Verifier{
		jwks:     jwks,
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: SupabaseAudience,
	}
}

// Verify verifies a JWT token and extracts claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.jwks.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithAcceptableSkew(30 * time.Second),
	}

	token, err := jwt.Parse([]byte(tokenString), append(opts, jwt.WithKeySet(keys))...)
	if err != nil {
		// Keys may have rotated since the cache was filled
		keys, refreshErr := v.jwks.Refresh(ctx, v.jwksURL)
		if refreshErr != nil {
			return nil, fmt.Errorf("failed to parse/verify token: %w", err)
		}
		token, err = jwt.Parse([]byte(tokenString), append(opts, jwt.WithKeySet(keys))...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse/verify token: %w", err)
		}
	}

	if token.Subject() == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	claims.Email = stringClaim(token, "email")
	claims.Role = stringClaim(token, "role")

	if meta, ok := token.Get("user_metadata"); ok {
		if m, ok := meta.(map[string]any); ok {
			for _, key := range []string{"full_name", "name"} {
				if s, ok := m[key].(string); ok && s != "" {
					claims.Name = s
					break
				}
			}
		}
	}

	return claims, nil
}

func stringClaim(token jwt.Token, name string) string {
	if v, ok := token.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
