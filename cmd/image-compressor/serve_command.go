package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	compresshttp "github.com/aliskhannn/image-compressor/internal/api/handlers/compress"
	"github.com/aliskhannn/image-compressor/internal/api/router"
	"github.com/aliskhannn/image-compressor/internal/api/server"
	"github.com/aliskhannn/image-compressor/internal/infra/kafka/consumer"
	"github.com/aliskhannn/image-compressor/internal/infra/kafka/producer"
	jobmsg "github.com/aliskhannn/image-compressor/internal/kafka/handlers/job"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		withHTTP  bool
		withQueue bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and consume compression jobs from Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !withHTTP && !withQueue {
				return errors.New("nothing to serve: enable --http or --queue")
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := ctx.newApp(runCtx)
			if err != nil {
				return err
			}
			defer a.close()
			cfg := a.cfg

			// Retry strategy for Kafka and other external calls.
			strategy := retry.Strategy{
				Attempts: cfg.Retry.Attempts,
				Delay:    cfg.Retry.Delay,
				Backoff:  cfg.Retry.Backoff,
			}

			var wg sync.WaitGroup

			// Kafka consumer for compression jobs, reports go to the results topic.
			if withQueue {
				p := producer.New(&cfg.Kafka, strategy)
				defer func() {
					if err := p.Close(); err != nil {
						zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
					}
				}()

				c := consumer.New(&cfg.Kafka, strategy, jobmsg.NewHandler(a.service, cfg, p))
				defer func() {
					if err := c.Close(); err != nil {
						zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
					}
				}()

				wg.Add(1)
				go c.Consume(runCtx, &wg)
			}

			var s *http.Server
			serveErr := make(chan error, 1)
			if withHTTP {
				// Without a database there is no journal to look outcomes up in.
				h := compresshttp.NewHandler(a.service, nil, cfg, cfg.Profiles)
				if a.journal != nil {
					h = compresshttp.NewHandler(a.service, a.journal, cfg, cfg.Profiles)
				}

				s = server.New(cfg.Server.Addr(), router.Setup(h, cfg.Server.AllowedOrigins))
				go func() {
					zlog.Logger.Info().Str("addr", s.Addr).Msg("starting server")
					if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						serveErr <- err
					}
				}()
			}

			// Block until context is canceled (SIGINT/SIGTERM) or the server fails.
			select {
			case <-runCtx.Done():
				zlog.Logger.Info().Msg("context done")
			case err = <-serveErr:
				zlog.Logger.Err(err).Msg("failed to start server")
				cancel()
			}

			// Wait for Kafka consumer goroutine to finish.
			wg.Wait()

			if s != nil {
				// Graceful shutdown with timeout for HTTP server.
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				zlog.Logger.Info().Msg("shutting down server")
				if err := s.Shutdown(shutdownCtx); err != nil {
					zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
				}
				if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
					zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
				}
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&withHTTP, "http", true, "Serve the HTTP API")
	cmd.Flags().BoolVar(&withQueue, "queue", true, "Consume jobs from Kafka")

	return cmd
}
