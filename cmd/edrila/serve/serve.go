// Package servecmder provides the serve command, which runs the development
// assistant server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/config"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/devserver"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
)

type ServeCommander struct {
	listen    string
	jwtSecret string
	delay     time.Duration
	jsonLogs  bool
	debug     bool
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagJWTSecret,
}

const serveLongDesc string = `Run a local development assistant.

The server speaks the same streaming protocol as the admin panel chat
endpoint: a meta event with the room id, content fragments, and an error
event for failures. It echoes every message back. Messages starting with
/fail end in an error event instead.

Requests need a bearer token. With --jwt-secret set, the token must be an
HS256 JWT signed with that secret.

Examples:
  edrila serve
  edrila serve --listen :9000 --delay 50ms
  edrila serve --jwt-secret dev-secret`

const serveShortDesc string = "Run a local development assistant"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			cfg := config.FromViper(v)
			cmder.listen = cfg.DevServer.Listen
			cmder.jwtSecret = cfg.DevServer.JWTSecret
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagJWTSecret, &cmder.jwtSecret)
	cmd.Flags().DurationVar(&cmder.delay, "delay", 30*time.Millisecond, "Pause between streamed fragments")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json", false, "Write JSON logs instead of pretty output")

	return cmd
}

func (c *ServeCommander) run() error {
	log := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.jsonLogs),
		logger.WithJSON(c.jsonLogs),
		logger.WithComponent("devserver"),
	)

	server := devserver.NewServer(devserver.Config{
		ListenAddr:    c.listen,
		JWTSecret:     c.jwtSecret,
		FragmentDelay: c.delay,
	}, log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("dev server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
