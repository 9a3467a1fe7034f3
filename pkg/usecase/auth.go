package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// AuthUseCaseInterface verifies API credentials
type AuthUseCaseInterface interface {
	// Authenticate verifies a bearer token and returns its principal
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies JWTs signed either by a key of a JWKS endpoint or
// with a shared HMAC secret
type AuthUseCase struct {
	jwksURL    string
	hmacSecret []byte
	audience   string
	issuer     string
	keys       *keySetCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL verifies tokens with the keys published at url
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithHMACSecret verifies HS256 tokens with a shared secret
func WithHMACSecret(secret []byte) AuthOption {
	return func(uc *AuthUseCase) {
		uc.hmacSecret = secret
	}
}

// WithAudience requires the aud claim to contain audience
func WithAudience(audience string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.audience = audience
	}
}

// WithIssuer requires the iss claim to equal issuer
func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

func NewAuthUseCase(options ...AuthOption) (*AuthUseCase, error) {
	uc := &AuthUseCase{
		keys: newKeySetCache(),
	}
	for _, opt := range options {
		opt(uc)
	}

	if uc.jwksURL == "" && len(uc.hmacSecret) == 0 {
		return nil, goerr.New("either JWKS URL or HMAC secret is required")
	}
	if uc.jwksURL != "" && len(uc.hmacSecret) > 0 {
		return nil, goerr.New("JWKS URL and HMAC secret are mutually exclusive")
	}
	return uc, nil
}

// Authenticate parses and validates the token. Expiry is checked with ten
// seconds of clock skew.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "no bearer token")
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if len(uc.hmacSecret) > 0 {
		opts = append(opts, jwt.WithKey(jwa.HS256, uc.hmacSecret))
	} else {
		keySet, err := uc.keys.get(ctx, uc.jwksURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, jwt.WithKeySet(keySet))
	}
	if uc.audience != "" {
		opts = append(opts, jwt.WithAudience(uc.audience))
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}

	parsed, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrUnauthenticated, err), "failed to verify token")
	}
	if parsed.Subject() == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "sub claim not found in token")
	}

	principal := &model.Principal{Subject: parsed.Subject()}
	if v, ok := parsed.Get("email"); ok {
		principal.Email, _ = v.(string)
	}
	if v, ok := parsed.Get("name"); ok {
		principal.Name, _ = v.(string)
	}
	return principal, nil
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}
