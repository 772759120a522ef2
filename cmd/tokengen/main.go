// Command tokengen mints a bearer token for an owner identity using the
// server's JWT settings. Intended for local development and e2e runs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	jwttoken "statusreg/internal/jwt_token"
	"statusreg/internal/platform/config"
	id "statusreg/pkg/domain"
)

func main() {
	cfg := config.FromEnv()

	owner := flag.String("owner", "", "owner ID (UUID); a random one is generated when empty")
	ttl := flag.Duration("ttl", cfg.Auth.TokenTTL, "token lifetime")
	quiet := flag.Bool("q", false, "print only the token")
	flag.Parse()

	if err := run(os.Stdout, cfg.Auth, *owner, *ttl, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, auth config.AuthConfig, owner string, ttl time.Duration, quiet bool) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	ownerID := id.NewOwnerID()
	if owner != "" {
		parsed, err := id.ParseOwnerID(owner)
		if err != nil {
			return err
		}
		ownerID = parsed
	}

	token, err := jwttoken.NewJWTService(auth.JWTSigningKey, auth.JWTIssuer, auth.JWTAudience).
		GenerateAccessToken(ownerID, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if quiet {
		_, err = fmt.Fprintln(out, token)
		return err
	}
	_, err = fmt.Fprintf(out, "owner_id: %s\nexpires_in: %s\ntoken: %s\n", ownerID, ttl, token)
	return err
}
