package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/driftchat/driftchat/internal/bridge"
	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/config"
	"github.com/driftchat/driftchat/internal/logging"
	"github.com/driftchat/driftchat/internal/netmon"
	"github.com/driftchat/driftchat/internal/store"
)

func newRunCmd() *cobra.Command {
	var channelArg string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the chat backend and bridge connection state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []bridge.Option{
				bridge.WithLogger(log),
				bridge.WithDiagnostics(diagLogger(log)),
			}

			var cache *store.Store
			if cfg.Storage.Enabled {
				if err := paths.EnsureBase(); err != nil {
					return err
				}
				path := cfg.Storage.Path
				if path == "" {
					path = filepath.Join(paths.Data, "cache.db")
				}
				cache, err = store.Open(path, log)
				if err != nil {
					return err
				}
				opts = append(opts, bridge.WithOfflineStorage(cache))
			}

			client := chat.NewClient(cfg.Server.URL, cfg.Server.User, log)

			br, err := bridge.New(client, opts...)
			if err != nil {
				return err
			}
			defer br.Close()

			cancelWatch := br.Watch(func(s bridge.Snapshot) {
				log.Info().
					Str("connectivity", s.Connectivity.String()).
					Bool("recovering", s.Recovering).
					Str("channel", s.Channel.CID()).
					Msg("connection state")
			})
			defer cancelWatch()

			if cache != nil {
				sub := client.Subscribe(chat.EventMessageNew, func(ev chat.Event) {
					if ev.Message == nil {
						return
					}
					if err := cache.SaveMessage(ev.Message); err != nil {
						log.Warn().Err(err).Msg("caching message failed")
					}
				})
				defer sub.Cancel()
			}

			prober := netmon.NewProber(netmon.ProberConfig{
				Addr:     cfg.Network.ProbeAddr,
				Interval: time.Duration(cfg.Network.ProbeIntervalMS) * time.Millisecond,
				Timeout:  time.Duration(cfg.Network.ProbeTimeoutMS) * time.Millisecond,
			}, log)
			prober.Start()
			defer prober.Stop()

			br.Mount(ctx, prober)

			if channelArg != "" {
				br.SetActiveChannel(parseChannel(channelArg))
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				// a failed first dial is not fatal: if the session started
				// offline, the bridge re-establishes once the network is back
				if err := client.OpenConnection(gctx); err != nil {
					log.Warn().Err(err).Msg("initial connection failed; waiting for network")
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				return client.Close()
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channelArg, "channel", "", `active channel as "type:id"`)
	return cmd
}

// diagLogger adapts the bridge's diagnostic callback onto the debug log.
func diagLogger(log *logging.Logger) bridge.DiagnosticFunc {
	diag := log.Sub("bridge")
	return func(category, event string, fields map[string]any) {
		diag.Debug().Str("category", category).Fields(fields).Msg(event)
	}
}

func parseChannel(s string) chat.Channel {
	typ, id, found := strings.Cut(s, ":")
	if !found {
		return chat.Channel{Type: "messaging", ID: s}
	}
	return chat.Channel{Type: typ, ID: id}
}
