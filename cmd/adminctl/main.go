// Command adminctl prepares admin credentials for the server.
//
//	adminctl hash-password <password>   print ADMIN_PASSWORD_SALT and ADMIN_PASSWORD_HASH
//	adminctl issue-token [-expiry 1h] <email>   print an admin JWT signed with JWT_SECRET
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"eventify/config"
	"eventify/internal/adapters/auth"
	"eventify/internal/domain"
)

const usage = `usage:
  adminctl hash-password <password>
  adminctl issue-token [-expiry duration] <email>`

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:], os.Stdout, config.Load); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer, load func() (*config.Config, error)) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "hash-password":
		if len(args) != 2 {
			return errUsage
		}
		return hashPassword(out, auth.NewBcryptHasher(0), args[1])
	case "issue-token":
		fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		expiry := fs.Duration("expiry", 0, "token lifetime (default JWT_EXPIRY)")
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 1 {
			return errUsage
		}
		cfg, err := load()
		if err != nil {
			return err
		}
		if *expiry <= 0 {
			*expiry = cfg.JWTExpiry
		}
		return issueToken(out, auth.NewJWTIssuer(cfg.JWTSecret), fs.Arg(0), *expiry)
	default:
		return errUsage
	}
}

func hashPassword(out io.Writer, hasher domain.PasswordHasher, password string) error {
	salt, err := hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	hash, err := hasher.Hash(salt, password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintf(out, "ADMIN_PASSWORD_SALT=%s\nADMIN_PASSWORD_HASH=%s\n", salt, hash)
	return err
}

func issueToken(out io.Writer, issuer domain.TokenIssuer, email string, expiry time.Duration) error {
	token, err := issuer.Issue("admin", email, []string{domain.RoleAdmin}, expiry)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
