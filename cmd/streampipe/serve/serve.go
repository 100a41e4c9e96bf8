// Package servecmder provides the serve command for running the relay server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streampipeco/streampipe/pkg/config"
	"github.com/streampipeco/streampipe/pkg/logger"
	"github.com/streampipeco/streampipe/relay"
)

type ServeCommander struct {
	listen      string
	upstream    string
	provider    string
	passthrough bool
	debug       bool
	jsonLogs    bool
}

var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "relay.listen",
		Description: "Address for the relay to listen on",
	},
	config.FlagUpstream: {
		Name:        "upstream",
		Shorthand:   "u",
		ViperKey:    "relay.upstream",
		Description: "Upstream LLM provider URL",
	},
	config.FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "relay.provider",
		Description: "LLM provider type (anthropic, openai, ollama, raw)",
	},
	config.FlagPassthrough: {
		Name:        "passthrough",
		ViperKey:    "relay.passthrough",
		Description: "Forward SSE streams verbatim instead of extracting tokens",
	},
}

const serveLongDesc string = `Run the relay server.

The relay forwards every request to the configured upstream URL. Streaming
responses come back as plain text tokens instead of raw server-sent events,
and each finished completion is recorded asynchronously.

Supported provider types: anthropic, openai, ollama, raw

Flags left unset resolve through environment variables
(STREAMPIPE_RELAY_LISTEN, STREAMPIPE_RELAY_UPSTREAM, ...), then
config.toml in the .streampipe/ directory, then built-in defaults.`

const serveShortDesc string = "Run the streampipe relay server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, []string{
				config.FlagListen,
				config.FlagUpstream,
				config.FlagProvider,
				config.FlagPassthrough,
			})

			cmder.listen = v.GetString("relay.listen")
			cmder.upstream = v.GetString("relay.upstream")
			cmder.provider = v.GetString("relay.provider")
			cmder.passthrough = v.GetBool("relay.passthrough")
			cmder.debug = v.GetBool("log.debug")
			cmder.jsonLogs = v.GetBool("log.json")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			if debug {
				cmder.debug = true
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, serveFlags, config.FlagProvider, &cmder.provider)
	config.AddBoolFlag(cmd, serveFlags, config.FlagPassthrough, &cmder.passthrough)

	return cmd
}

func (c *ServeCommander) run() error {
	opts := []logger.Option{logger.WithDebug(c.debug)}
	if c.jsonLogs {
		opts = append(opts, logger.WithJSON(true))
	} else {
		opts = append(opts, logger.WithPretty(true))
	}
	log := logger.New(opts...)

	relayConfig := relay.Config{
		ListenAddr:  c.listen,
		UpstreamURL: c.upstream,
		Provider:    c.provider,
		Passthrough: c.passthrough,
	}

	r, err := relay.New(relayConfig, nil, log)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	defer r.Close()

	errChan := make(chan error, 1)
	go func() {
		if err := r.Run(); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}
