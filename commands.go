package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dalfonso89/currency-converter/internal/api"
	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/platform"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/session"
	"github.com/dalfonso89/currency-converter/internal/tui"
)

const shutdownTimeout = 30 * time.Second

// options are the global flags shared by every command
type options struct {
	logLevel string
	rate     string
	cfg      *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "converter",
		Short:         "Dollar to rupiah converter at a fixed rate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if opts.rate != "" {
				rate, err := config.ParseRate(opts.rate)
				if err != nil {
					return err
				}
				cfg.Conversion.Rate = rate
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVar(&opts.rate, "rate", "", "rupiah per dollar (default from CONVERSION_RATE)")

	root.AddCommand(serveCmd(opts), tuiCmd(opts), convertCmd(opts))
	return root
}

func serveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts.cfg)
		},
	}
}

func tuiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the converter form in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the screen, so only errors go to stderr.
			log := logger.NewWithOutput("error", os.Stderr)
			form := converter.NewForm(converter.NewEngine(opts.cfg.Conversion))

			ctx, stop := platform.NewShutdownContext(cmd.Context(), log)
			defer stop()
			return tui.Run(ctx, form, log)
		},
	}
}

func convertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert one dollar amount and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := converter.NewEngine(opts.cfg.Conversion)
			return printConversion(cmd.OutOrStdout(), engine, args[0])
		},
	}
}

// printConversion writes the result line and fails on invalid input
func printConversion(out io.Writer, engine *converter.Engine, input string) error {
	conversion, err := engine.Convert(input)
	if err != nil {
		fmt.Fprintln(out, converter.InvalidInputMessage)
		return err
	}
	fmt.Fprintln(out, conversion.Text)
	return nil
}

func serve(parent context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel)

	engine := converter.NewEngine(cfg.Conversion)
	sessions := session.NewStore(engine, cfg.SessionTTL, log)
	defer sessions.Stop()
	rateLimiter := ratelimit.NewLimiter(cfg, log)
	defer rateLimiter.Stop()

	handlers := api.NewHandlers(api.HandlerConfig{
		Logger:      log,
		Engine:      engine,
		Sessions:    sessions,
		RateLimiter: rateLimiter,
	})

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	shutdownCtx, stop := platform.NewShutdownContext(parent, log)
	defer stop()

	group, groupCtx := errgroup.WithContext(shutdownCtx)

	group.Go(func() error {
		log.WithField("rate", engine.Rate().String()).Info("Starting converter service on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down server...")

		// Give outstanding requests time to complete
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	})

	if err := group.Wait(); err != nil {
		log.Errorf("Server stopped with error: %v", err)
		return err
	}

	log.Info("Server exited")
	return nil
}
