package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/quizkit/quizkit"
	"github.com/quizkit/quizkit/internal/config"
	"github.com/quizkit/quizkit/internal/logging"
	httpAdapter "github.com/quizkit/quizkit/pkg/adapters/http"
	"github.com/quizkit/quizkit/pkg/adapters/memory"
	redisAdapter "github.com/quizkit/quizkit/pkg/adapters/redis"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/observability"
	"github.com/quizkit/quizkit/pkg/persistence/middleware"
	"github.com/quizkit/quizkit/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quizkit HTTP server",
	Long:  `Starts the quizkit API server, exposing project management, publishing and lead capture over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		seed, _ := cmd.Flags().GetString("seed")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level))

		var store ports.ProjectStore
		var locker ports.DistributedLocker
		switch cfg.Store.Backend {
		case "redis":
			rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithPrefix(cfg.Redis.Prefix))
			store = rs
			locker = redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)
		default:
			store = memory.NewStore()
		}

		store, err = protectLeads(cfg, store)
		if err != nil {
			fmt.Printf("Error configuring lead protection: %v\n", err)
			os.Exit(1)
		}

		metrics := observability.New(prometheus.DefaultRegisterer)

		opts := []quizkit.Option{
			quizkit.WithLogger(logger),
			quizkit.WithBaseURL(cfg.Server.BaseURL),
			quizkit.WithLifecycleHooks(metrics.Hooks()),
		}
		if locker != nil {
			opts = append(opts, quizkit.WithLocker(locker))
		}

		svc, err := quizkit.New(store, opts...)
		if err != nil {
			fmt.Printf("Error initializing quizkit: %v\n", err)
			os.Exit(1)
		}

		if seed != "" {
			if err := seedProject(svc, seed); err != nil {
				fmt.Printf("Error seeding funnel from %s: %v\n", seed, err)
				os.Exit(1)
			}
		}

		handler := httpAdapter.NewHandler(svc, httpAdapter.WithLogger(logger))

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting quizkit server", "addr", srv.Addr, "backend", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "error", err)
				}
			}
			logger.Info("quizkit server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("seed", "", "Funnel file to load into a fresh project on startup")
}

// protectLeads wraps the store with the configured lead-at-rest
// decorators: answer masking first, field encryption innermost.
func protectLeads(cfg *config.Config, store ports.ProjectStore) (ports.ProjectStore, error) {
	var mws []middleware.Middleware
	if len(cfg.Leads.MaskAnswers) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Leads.MaskAnswers))
	}
	if cfg.Leads.EncryptionKey != "" {
		keys, err := cfg.LeadEncryptionKeys()
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    keys[0],
			FallbackKeys: keys[1:],
		}))
	}
	return middleware.Chain(store, mws...), nil
}

func seedProject(svc *quizkit.Service, path string) error {
	f, err := funnel.ParseFile(path)
	if err != nil {
		return err
	}
	project, err := svc.CreateProject(context.Background(), f)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded project %s (%s)\n", project.ID, project.Name)
	return nil
}
