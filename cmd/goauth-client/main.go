package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/session"
)

const usage = `usage: goauth-client [flags] <command> [args]

commands:
  login <email> <password>            exchange credentials for a session
  register <name> <email> <password>  create an account and its session
  whoami                              fetch the current user
  refresh                             exchange the token for a new one
  verify <data> <signature>           ask the endpoint to check a signature
  bootstrap                           recover a server-held session
  status                              print the persisted session
  claims                              print the unverified token claims
  logout                              end the session

Configuration is read from GOAUTH_CLIENT_* variables and ./.env.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("goauth-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		baseURL  = fs.String("base-url", "", "auth endpoint base URL (overrides GOAUTH_CLIENT_ENDPOINT_BASE_URL)")
		device   = fs.String("device", "", "device identifier sent on login and register; random when empty")
		timeout  = fs.Duration("timeout", 30*time.Second, "overall command timeout")
		verbose  = fs.Bool("v", false, "debug logging")
		envFile  = fs.String("env", "", "dotenv file to load instead of ./.env")
		jsonMode = fs.Bool("json", false, "print results as JSON")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := goAuthClient.LoadConfigFromEnv(envFiles...)
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		return 1
	}
	if *baseURL != "" {
		cfg.Endpoint.BaseURL = *baseURL
	}
	// A memory store would forget the session between invocations.
	if cfg.Persistence.Backend == goAuthClient.BackendMemory {
		cfg.Persistence.Backend = goAuthClient.BackendFile
		if cfg.Persistence.Path == "" {
			if cfg.Persistence.Path, err = session.DefaultFilePath(); err != nil {
				logger.Error("resolve session file", slog.Any("error", err))
				return 1
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	store, closeStore, err := goAuthClient.OpenStore(ctx, cfg.Persistence)
	if err != nil {
		logger.Error("open session store", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close session store", slog.Any("error", err))
		}
	}()

	mgr, err := goAuthClient.New().
		WithConfig(cfg).
		WithStore(store).
		WithLogger(logger).
		WithNavigator(goAuthClient.NavigatorFunc(func(ctx context.Context, path string) {
			logger.InfoContext(ctx, "sign in again", slog.String("path", path))
		})).
		Build()
	if err != nil {
		logger.Error("build session manager", slog.Any("error", err))
		return 1
	}
	if err := mgr.Restore(ctx); err != nil {
		logger.Warn("restore session", slog.Any("error", err))
	}

	out := printer{w: stdout, json: *jsonMode}
	if err := dispatch(ctx, mgr, fs.Args(), *device, out); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		logger.Error(fs.Arg(0)+" failed", slog.Any("error", err))
		if msg := mgr.Snapshot().Error; msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func dispatch(ctx context.Context, mgr *goAuthClient.Manager, args []string, device string, out printer) error {
	cmd, rest := args[0], args[1:]
	need := func(n int) error {
		if len(rest) != n {
			return errUsage
		}
		return nil
	}

	switch cmd {
	case "login":
		if err := need(2); err != nil {
			return err
		}
		if err := mgr.Login(ctx, rest[0], rest[1], device); err != nil {
			return err
		}
		return out.session(mgr.Snapshot())

	case "register":
		if err := need(3); err != nil {
			return err
		}
		if err := mgr.Register(ctx, rest[0], rest[1], rest[2], device); err != nil {
			return err
		}
		return out.session(mgr.Snapshot())

	case "whoami":
		if err := need(0); err != nil {
			return err
		}
		if !mgr.Snapshot().IsAuthenticated() {
			return goAuthClient.ErrNotAuthenticated
		}
		if err := mgr.FetchUser(ctx); err != nil {
			return err
		}
		return out.session(mgr.Snapshot())

	case "refresh":
		if err := need(0); err != nil {
			return err
		}
		if !mgr.Snapshot().IsAuthenticated() {
			return goAuthClient.ErrNotAuthenticated
		}
		if err := mgr.RefreshToken(ctx); err != nil {
			return err
		}
		return out.session(mgr.Snapshot())

	case "verify":
		if err := need(2); err != nil {
			return err
		}
		return out.value("valid", mgr.VerifySignature(ctx, rest[0], rest[1]))

	case "bootstrap":
		if err := need(0); err != nil {
			return err
		}
		if !mgr.Bootstrap(ctx) {
			return errors.New("no server-held session")
		}
		return out.session(mgr.Snapshot())

	case "status":
		if err := need(0); err != nil {
			return err
		}
		return out.session(mgr.Snapshot())

	case "claims":
		if err := need(0); err != nil {
			return err
		}
		claims, err := mgr.Claims()
		if err != nil {
			return err
		}
		return out.value("claims", claims)

	case "logout":
		if err := need(0); err != nil {
			return err
		}
		mgr.Logout(ctx)
		return out.session(mgr.Snapshot())

	default:
		return errUsage
	}
}

type printer struct {
	w    io.Writer
	json bool
}

func (p printer) session(s goAuthClient.Snapshot) error {
	if p.json {
		return p.value("session", map[string]any{
			"authenticated":  s.IsAuthenticated(),
			"user":           s.User,
			"has_public_key": s.PublicKey != "",
		})
	}
	if !s.IsAuthenticated() {
		_, err := fmt.Fprintln(p.w, "not signed in")
		return err
	}
	if s.User == nil {
		_, err := fmt.Fprintln(p.w, "signed in (user not loaded)")
		return err
	}
	_, err := fmt.Fprintf(p.w, "signed in as %s <%s> (id %d)\n", s.User.Name, s.User.Email, s.User.ID)
	return err
}

func (p printer) value(key string, v any) error {
	if !p.json {
		_, err := fmt.Fprintf(p.w, "%s: %v\n", key, v)
		return err
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{key: v})
}
