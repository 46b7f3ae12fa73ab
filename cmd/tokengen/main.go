// Package main mints bearer tokens for local testing, signed with the same
// secrets the server resolves from the environment (or .env).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"peegflow/internal/credential"
	"peegflow/internal/platform/config"
	id "peegflow/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Domain    string            `json:"domain"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]string `json:"claims"`
	Usage     map[string]string `json:"usage"`

	asJSON bool
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	cfg, err := config.FromEnv(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading configuration: %v\n", err)
		return 1
	}

	var out *tokenOutput
	switch args[0] {
	case "tenant":
		out, err = tenantToken(args[1:], cfg, stderr)
	case "platform":
		out, err = platformToken(args[1:], cfg, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return write(stdout, out)
}

type commonFlags struct {
	ttl  time.Duration
	json bool
}

func (c *commonFlags) bind(fs *flag.FlagSet, defaultTTL time.Duration) {
	fs.DurationVar(&c.ttl, "ttl", defaultTTL, "Token time-to-live")
	fs.BoolVar(&c.json, "json", false, "Output as JSON")
}

func codecFor(cfg *config.Config, ttl time.Duration) (*credential.Codec, error) {
	return credential.NewCodec(credential.Config{
		TenantSecret:   []byte(cfg.Auth.TenantSecret),
		PlatformSecret: []byte(cfg.Auth.PlatformSecret),
		TTL:            ttl,
	})
}

func tenantToken(args []string, cfg *config.Config, stderr io.Writer) (*tokenOutput, error) {
	fs := flag.NewFlagSet("tenant", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.bind(fs, cfg.Auth.TokenTTL)
	rawTenant := fs.String("tenant-id", "", "Tenant ID (UUID, required)")
	rawUser := fs.String("user-id", "", "User ID (UUID). Generated if empty.")
	role := fs.String("role", string(id.RoleAdmin), "Role claim: admin or patient")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	tenantID, err := id.ParseTenantID(*rawTenant)
	if err != nil {
		return nil, fmt.Errorf("invalid -tenant-id: %w", err)
	}
	userID := id.UserID(uuid.New())
	if *rawUser != "" {
		if userID, err = id.ParseUserID(*rawUser); err != nil {
			return nil, fmt.Errorf("invalid -user-id: %w", err)
		}
	}

	codec, err := codecFor(cfg, common.ttl)
	if err != nil {
		return nil, err
	}
	token, err := codec.IssueTenant(context.Background(), userID, tenantID, id.Role(*role))
	if err != nil {
		return nil, err
	}
	return &tokenOutput{
		Token:     token,
		Domain:    "tenant",
		ExpiresIn: codec.TTL().String(),
		Claims: map[string]string{
			"sub":       userID.String(),
			"tenant_id": tenantID.String(),
			"role":      *role,
		},
		Usage:  map[string]string{"header": "Authorization: Bearer " + token},
		asJSON: common.json,
	}, nil
}

func platformToken(args []string, cfg *config.Config, stderr io.Writer) (*tokenOutput, error) {
	fs := flag.NewFlagSet("platform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.bind(fs, cfg.Auth.TokenTTL)
	rawAdmin := fs.String("admin-id", "", "Platform admin ID (UUID, required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	adminID, err := id.ParsePlatformAdminID(*rawAdmin)
	if err != nil {
		return nil, fmt.Errorf("invalid -admin-id: %w", err)
	}
	codec, err := codecFor(cfg, common.ttl)
	if err != nil {
		return nil, err
	}
	token, err := codec.IssuePlatform(context.Background(), adminID)
	if err != nil {
		return nil, err
	}
	return &tokenOutput{
		Token:     token,
		Domain:    "platform",
		ExpiresIn: codec.TTL().String(),
		Claims:    map[string]string{"sub": adminID.String()},
		Usage:     map[string]string{"header": "Authorization: Bearer " + token},
		asJSON:    common.json,
	}, nil
}

func write(w io.Writer, out *tokenOutput) int {
	if out.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return 1
		}
		return 0
	}
	fmt.Fprintf(w, "%s token (expires in %s)\n\n%s\n\n", out.Domain, out.ExpiresIn, out.Token)
	fmt.Fprintf(w, "Usage:\n  curl -H \"Authorization: Bearer %s\" ...\n", out.Token)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `tokengen - mint bearer tokens for a local peegflow server

Tokens are signed with TENANT_JWT_SECRET / PLATFORM_JWT_SECRET (or the
development fallback), read from the environment or .env.

Usage:
  tokengen <command> [flags]

Commands:
  tenant     Issue a tenant-domain token (-tenant-id required)
  platform   Issue a platform-domain token (-admin-id required)

Examples:
  tokengen tenant -tenant-id 6f1c... -role patient -ttl 1h
  tokengen platform -admin-id 0b7e... -json
`)
}
