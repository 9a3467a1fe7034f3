package config

import (
	"errors"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds the flags of API authentication
type Auth struct {
	jwksURL    string
	hmacSecret string
	audience   string
	issuer     string
	noAuth     bool
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS URL used to verify bearer tokens",
			Category:    "Authentication",
			Destination: &x.jwksURL,
			Sources:     cli.EnvVars("PARTNERFLOW_AUTH_JWKS_URL"),
		},
		&cli.StringFlag{
			Name:        "auth-hmac-secret",
			Usage:       "Shared secret used to verify HS256 bearer tokens",
			Category:    "Authentication",
			Destination: &x.hmacSecret,
			Sources:     cli.EnvVars("PARTNERFLOW_AUTH_HMAC_SECRET"),
		},
		&cli.StringFlag{
			Name:        "auth-audience",
			Usage:       "Required aud claim",
			Category:    "Authentication",
			Destination: &x.audience,
			Sources:     cli.EnvVars("PARTNERFLOW_AUTH_AUDIENCE"),
		},
		&cli.StringFlag{
			Name:        "auth-issuer",
			Usage:       "Required iss claim",
			Category:    "Authentication",
			Destination: &x.issuer,
			Sources:     cli.EnvVars("PARTNERFLOW_AUTH_ISSUER"),
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication (development only)",
			Category:    "Authentication",
			Destination: &x.noAuth,
			Sources:     cli.EnvVars("PARTNERFLOW_NO_AUTH"),
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("jwks-url", x.jwksURL),
		slog.Int("hmac-secret.len", len(x.hmacSecret)),
		slog.String("audience", x.audience),
		slog.String("issuer", x.issuer),
		slog.Bool("no-auth", x.noAuth),
	)
}

// Configure creates the token verifier. Without --no-auth, a JWKS URL or an
// HMAC secret is required.
func (x *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if x.noAuth {
		if x.jwksURL != "" || x.hmacSecret != "" {
			logging.Default().Warn("--no-auth is set, ignoring --auth-jwks-url/--auth-hmac-secret")
		}
		logging.Default().Warn("Running in no-auth mode (development only)")
		return usecase.NewNoAuthnUseCase(), nil
	}

	if x.jwksURL == "" && x.hmacSecret == "" {
		return nil, goerr.Wrap(ErrMissingFlag,
			"authentication is required: set --auth-jwks-url or --auth-hmac-secret, or use --no-auth",
			goerr.V(FlagKey, "auth-jwks-url"))
	}

	var opts []usecase.AuthOption
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	}
	if x.hmacSecret != "" {
		opts = append(opts, usecase.WithHMACSecret([]byte(x.hmacSecret)))
	}
	if x.audience != "" {
		opts = append(opts, usecase.WithAudience(x.audience))
	}
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}

	authUC, err := usecase.NewAuthUseCase(opts...)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid auth settings")
	}
	logging.Default().Info("Token authentication enabled", "config", x)
	return authUC, nil
}
