package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dronedispatch/cmd"
	grpcadapter "dronedispatch/internal/adapters/in/grpc"
	httpadapter "dronedispatch/internal/adapters/in/http"
	"dronedispatch/internal/adapters/out/postgres"
	"dronedispatch/internal/config"
	"dronedispatch/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "dronedispatch",
		Short:        "Drone delivery dispatch service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "optional dotenv file")

	root.AddCommand(
		newServeCommand(&envFile),
		newMigrateCommand(&envFile),
		newPolicyCommand(),
		newTokenCommand(&envFile),
	)
	return root
}

func newServeCommand(envFile *string) *cobra.Command {
	var migrate bool

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC health server and the watchdog",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			return serve(c.Context(), cfg, migrate)
		},
	}
	command.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return command
}

func newMigrateCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := cmd.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			db, err := postgres.Open(cfg.Database())
			if err != nil {
				return err
			}
			if err = postgres.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.WithField("driver", cfg.DBDriver).Info("Schema is up to date")
			return nil
		},
	}
}

func newPolicyCommand() *cobra.Command {
	policy := &cobra.Command{
		Use:   "policy",
		Short: "Inspect dispatch policy files",
	}
	policy.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a policy file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := config.Parse(args[0], data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(),
				"%s is valid: reserve %d%%, stale after %s, watchdog %q\n",
				args[0], p.BatteryReservePercent, p.StaleMissionAfter, p.WatchdogSchedule)
			return err
		},
	})
	return policy
}

func newTokenCommand(envFile *string) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	command := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with JWT_SECRET",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			token, err := httpadapter.IssueToken(cfg.JWTSecret, subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), token)
			return err
		},
	}
	command.Flags().StringVar(&subject, "subject", "", "token subject, recorded as the actor")
	command.Flags().StringVar(&role, "role", httpadapter.RoleDispatcher, "admin, dispatcher or drone")
	command.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = command.MarkFlagRequired("subject")
	return command
}

func newLogger(cfg cmd.Config) *logrus.Entry {
	return logrus.NewEntry(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}))
}

func serve(parent context.Context, cfg cmd.Config, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg)

	policy, err := config.Load(cfg.PolicyPath)
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg.Database())
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()
	if migrate {
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	app, err := cmd.NewCompositionRoot(ctx, cfg, policy, db, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Failed to close outbound adapters")
		}
	}()

	e, err := httpadapter.NewRouter(httpadapter.NewServer(app.HTTPHandlers()), httpadapter.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	health := grpcadapter.NewHealthServer(log)

	manager, err := app.Jobs()
	if err != nil {
		return err
	}
	if err = manager.StartAll(); err != nil {
		return err
	}
	defer manager.StopAll()

	errCh := make(chan error, 2)
	go func() { errCh <- health.Serve(lis) }()
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if startErr := e.Start("0.0.0.0:" + cfg.HTTPPort); !errors.Is(startErr, http.ErrServerClosed) {
			errCh <- startErr
		}
	}()
	health.SetServing(true)

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-errCh:
		log.WithError(err).Error("Server stopped unexpectedly")
	}

	health.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(err, e.Shutdown(shutdownCtx), health.Shutdown(shutdownCtx))
}
