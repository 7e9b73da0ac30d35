// Command concierge runs the Inara Travel customer-support chatbot server
// and its knowledge ingest pipeline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/plugin/ai"
	"github.com/inaratravel/concierge/server"
	"github.com/inaratravel/concierge/server/runner/ingest"
	"github.com/inaratravel/concierge/store"
	"github.com/inaratravel/concierge/store/db"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "concierge",
	Short:   "Customer-support chatbot server for Inara Travel",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		prof, st, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.NewServer(ctx, prof, st)
		if err != nil {
			return errors.Wrap(err, "failed to create server")
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(ctx)
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "server failed")
			}
		case <-ctx.Done():
		}

		srv.Shutdown(context.Background())
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Load documents into the knowledge base and embed pending chunks",
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, st, err := setup()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Migrate(ctx); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}

		if prof.EmbeddingAPIKey == "" {
			return errors.New("CONCIERGE_EMBEDDING_API_KEY is required for ingest")
		}
		embedding, err := ai.NewEmbeddingService(&ai.EmbeddingConfig{
			APIKey:     prof.EmbeddingAPIKey,
			BaseURL:    prof.EmbeddingBaseURL,
			Model:      prof.EmbeddingModel,
			Dimensions: prof.EmbeddingDims,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create embedding service")
		}

		runner := ingest.NewRunner(st, embedding, prof.EmbeddingModel)
		total := 0
		for _, path := range args {
			n, err := runner.LoadFile(ctx, path)
			if err != nil {
				return err
			}
			total += n
		}
		if err := runner.EmbedMissing(ctx); err != nil {
			return err
		}
		fmt.Printf("ingested %d chunks from %d file(s)\n", total, len(args))
		return nil
	},
}

// setup loads configuration and opens the store.
func setup() (*profile.Profile, *store.Store, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	prof := profile.FromEnv(version)
	if err := prof.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}
	initLogger(prof)

	driver, err := db.NewDBDriver(prof)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create db driver")
	}
	return prof, store.New(driver, prof), nil
}

func initLogger(prof *profile.Profile) {
	var handler slog.Handler
	if prof.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	rootCmd.AddCommand(serveCmd, ingestCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
