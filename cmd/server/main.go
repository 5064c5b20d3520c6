package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/openpress/backend/auth"
	"github.com/openpress/backend/config"
	"github.com/openpress/backend/data"
	"github.com/openpress/backend/logging"
	"github.com/openpress/backend/server"
	"github.com/openpress/backend/template"
	"github.com/openpress/backend/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if cfg.LogLevel == "debug" {
		fmt.Println(print.MaybeHighlightJSON(cfg.Redacted()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger auth.Logger) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := migrate(ctx, db); err != nil {
		return err
	}

	signing, err := cfg.Signing()
	if err != nil {
		return err
	}

	notifier := auth.NewNotifier().WithLogger(logger)
	notifier.Subscribe(auth.EventValidationFailure, func(ctx context.Context, evt auth.Event) {
		if failure, ok := evt.(auth.ValidationFailureEvent); ok {
			logger.Warn("credential validation failed", "error", failure.Err)
		}
	})
	notifier.Subscribe(auth.EventUserLoggedIn, func(ctx context.Context, evt auth.Event) {
		if login, ok := evt.(auth.UserLoggedInEvent); ok {
			logger.Info("token issued", "subject", login.Subject, "expires_at", login.ExpiresAt)
		}
	})

	users := user.NewUsersRepository(db)
	userSvc := user.NewService(users).WithLogger(logger)
	identities := user.NewIdentityStore(users)

	templates := template.NewTemplatesRepository(db)
	templateSvc := template.NewService(templates).WithLogger(logger)

	validator := auth.NewCredentialValidator(identities).
		WithLogger(logger).
		WithNotifier(notifier)

	tokens := auth.NewTokenService(signing, notifier, logger)

	srv := server.New(server.Options{
		Logger:    logger,
		Passwords: auth.NewPasswordStrategy(validator),
		Resolver:  auth.NewTokenStrategy(tokens, identities).WithLogger(logger),
		Tokens:    tokens,
		Users:     userSvc,
		Templates: templateSvc,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// migrate applies the embedded up migrations in lexical order. The
// statements are idempotent so re-running at every boot is safe.
func migrate(ctx context.Context, db *bun.DB) error {
	migrations, err := data.Migrations()
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := fs.ReadFile(migrations, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return err
		}
	}

	return nil
}
