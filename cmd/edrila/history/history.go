// Package historycmder provides the history command for browsing stored rooms
// and their transcripts.
package historycmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/cliui"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/config"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/dotdir"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/factory"
)

type historyCommander struct {
	sqlitePath  string
	postgresDSN string
	configDir   string
	debug       bool

	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

var historyFlags = []string{
	config.FlagSQLite,
	config.FlagPostgres,
}

const historyLongDesc string = `Browse stored chat rooms.

Without arguments, lists every stored room, most recently updated first.
With a room id, prints that room's transcript. When stdout is a terminal,
assistant answers are rendered as markdown.

Examples:
  edrila history
  edrila history 42
  edrila history --postgres postgres://localhost/edrila`

const historyShortDesc string = "Browse stored chat rooms"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [room-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, historyFlags)

			cfg := config.FromViper(v)
			cmder.sqlitePath = cfg.Storage.SQLitePath
			cmder.postgresDSN = cfg.Storage.PostgresDSN
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.logger = logger.New(
				logger.WithDebug(cmder.debug),
				logger.WithPretty(true),
				logger.WithWriter(cmd.ErrOrStderr()),
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if len(args) == 1 {
				return cmder.showRoom(ctx, args[0])
			}
			return cmder.listRooms(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)

	return cmd
}

func (c *historyCommander) open(ctx context.Context) (storage.Driver, error) {
	historyPath, err := dotdir.NewManager().HistoryPath(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving history path: %w", err)
	}

	var driver storage.Driver
	err = cliui.Step(c.errOut, "Opening transcript store", func() error {
		var openErr error
		driver, openErr = factory.Open(ctx, factory.Config{
			SQLitePath:  c.sqlitePath,
			PostgresDSN: c.postgresDSN,
			Logger:      c.logger,
		}.OrSQLite(historyPath))
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("opening transcript store: %w", err)
	}
	return driver, nil
}

func (c *historyCommander) listRooms(ctx context.Context) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	rooms, err := driver.Rooms(ctx)
	if err != nil {
		return fmt.Errorf("listing rooms: %w", err)
	}

	if len(rooms) == 0 {
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No stored rooms yet."))
		return nil
	}

	maxLen := 0
	for _, r := range rooms {
		if len(r.ID) > maxLen {
			maxLen = len(r.ID)
		}
	}

	fmt.Fprintln(c.out)
	for _, r := range rooms {
		fmt.Fprintf(c.out, "  %s  %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("%-*s", maxLen, r.ID)),
			cliui.ValueStyle.Render(fmt.Sprintf("%3d messages", r.Messages)),
			cliui.DimStyle.Render(r.UpdatedAt.Local().Format(time.DateTime)),
		)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *historyCommander) showRoom(ctx context.Context, roomID string) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	t, err := storage.LoadTranscript(ctx, driver, roomID)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s %s %s\n\n",
		cliui.KeyStyle.Render("Room:"),
		cliui.NameStyle.Render(roomID),
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", t.Len())),
	)

	for _, m := range t.Messages() {
		stamp := cliui.DimStyle.Render(m.Timestamp.Local().Format(time.DateTime))
		switch m.Role {
		case conversation.RoleUser:
			fmt.Fprintf(c.out, "%s %s\n%s\n\n", cliui.UserStyle.Render("you>"), stamp, m.Content)
		default:
			fmt.Fprintf(c.out, "%s %s\n%s\n\n", cliui.AssistantStyle.Render("assistant>"), stamp, cliui.RenderFor(c.out, m.Content))
		}
	}
	return nil
}
