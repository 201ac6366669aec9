// Command tubemeta fetches YouTube watch pages and recovers video
// metadata without an API key, with an optional local cache and NATS
// event publishing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tubemeta/tubemeta/engine/extract"
	"github.com/tubemeta/tubemeta/engine/fetch"
	"github.com/tubemeta/tubemeta/engine/store"
	"github.com/tubemeta/tubemeta/pkg/events"
	"github.com/tubemeta/tubemeta/pkg/fn"
	"github.com/tubemeta/tubemeta/pkg/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tubemeta",
		Short:         "Keyless YouTube video metadata extractor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("cache", "", "path to sqlite cache (empty disables caching)")
	root.PersistentFlags().Duration("cache-ttl", time.Hour, "cache freshness window")
	root.PersistentFlags().String("nats-url", "", "publish extracted records to this NATS server")
	root.PersistentFlags().String("metrics-addr", "", "serve /metrics on this address")
	root.PersistentFlags().Int("workers", 4, "concurrent extractions")
	root.PersistentFlags().Bool("verbose", false, "debug logging")

	viper.SetEnvPrefix("TUBEMETA")
	viper.AutomaticEnv()
	for _, name := range []string{"cache", "cache-ttl", "nats-url", "metrics-addr", "workers", "verbose"} {
		_ = viper.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(newGetCmd(), newPurgeCmd())
	return root
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <video-id>...",
		Short: "Fetch and extract metadata for one or more videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := metrics.New()
			if addr := viper.GetString("metrics-addr"); addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", reg.Handler())
				go func() {
					if err := http.ListenAndServe(addr, mux); err != nil {
						log.Error().Err(err).Msg("metrics server exited")
					}
				}()
			}

			client := fetch.New(log, reg)

			var cache *store.Store
			if path := viper.GetString("cache"); path != "" {
				var err error
				cache, err = store.Open(path, viper.GetDuration("cache-ttl"), log)
				if err != nil {
					return err
				}
				defer cache.Close()
			}

			var pub *events.Publisher
			if url := viper.GetString("nats-url"); url != "" {
				var err error
				pub, err = events.Connect(url, "")
				if err != nil {
					return err
				}
				defer pub.Close()
			}

			cacheHits := reg.Counter("cache_hits_total", "Records served from the local cache.")
			extracted := reg.Counter("extractions_total", "Records extracted from fetched pages.")

			process := func(id string) fn.Result[extract.VideoMetadata] {
				if cache != nil {
					if meta, ok, err := cache.Get(ctx, id); err == nil && ok {
						cacheHits.Inc()
						log.Debug().Str("video_id", id).Msg("cache hit")
						return fn.Ok(meta)
					}
				}

				stage := fn.Then(
					fn.TracedStage("fetch.watch_page", func(ctx context.Context, id string) fn.Result[string] {
						return client.WatchPage(ctx, id)
					}),
					fn.TracedStage("extract.page", func(ctx context.Context, doc string) fn.Result[extract.VideoMetadata] {
						return fn.FromPair(extract.Extract(id, doc))
					}),
				)
				meta, err := stage(ctx, id).Unwrap()
				if err != nil {
					return fn.Err[extract.VideoMetadata](err)
				}
				extracted.Inc()

				meta = client.FillMissing(ctx, meta)
				for name, present := range map[string]bool{
					"title":            meta.Title != "",
					"author":           meta.Author != "",
					"view_count":       meta.ViewCountText != "",
					"published":        meta.PublishedTimeText != "",
					"duration":         meta.DurationSeconds > 0,
					"long_description": meta.LongDescription != "",
				} {
					if present {
						reg.Counter(metrics.WithLabels("fields_filled_total", "field", name),
							"Extractions where the field resolved.").Inc()
					}
				}

				if cache != nil {
					if err := cache.Put(ctx, meta); err != nil {
						log.Warn().Str("video_id", id).Err(err).Msg("cache write failed")
					}
				}
				if pub != nil {
					if err := pub.PublishMetadata(ctx, meta); err != nil {
						log.Warn().Str("video_id", id).Err(err).Msg("event publish failed")
					}
				}
				return fn.Ok(meta)
			}

			results := fn.ParMapResult(args, viper.GetInt("workers"), process)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			failed := 0
			for i, r := range results {
				meta, err := r.Unwrap()
				if err != nil {
					failed++
					log.Error().Str("video_id", args[i]).Err(err).Msg("extraction failed")
					continue
				}
				if err := enc.Encode(meta); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, len(args))
			}
			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete stale rows from the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			path := viper.GetString("cache")
			if path == "" {
				return fmt.Errorf("no cache path configured")
			}
			cache, err := store.Open(path, viper.GetDuration("cache-ttl"), log)
			if err != nil {
				return err
			}
			defer cache.Close()

			n, err := cache.Purge(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int64("removed", n).Msg("cache purged")
			return nil
		},
	}
}
