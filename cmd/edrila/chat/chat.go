// Package chatcmder provides the chat command for talking to the admin panel
// assistant from a terminal.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/assistant"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/cliui"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/config"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/dotdir"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/eventstream"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/eventstream/kafka"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/eventstream/nop"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/factory"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/utils"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/worker"
)

const clientName = "edrila-cli"

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.AssistantStyle.Render("assistant> ")
)

type chatCommander struct {
	endpoint     string
	token        string
	timeout      uint
	sqlitePath   string
	postgresDSN  string
	kafkaBrokers string
	kafkaTopic   string

	roomID    string
	dumpPath  string
	logFile   string
	configDir string
	debug     bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

var chatFlags = []string{
	config.FlagEndpoint,
	config.FlagToken,
	config.FlagTimeout,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

const chatLongDesc string = `Start an interactive chat with the admin panel assistant.

Each message is posted to the streaming chat endpoint and the answer is
printed as it arrives. Finished turns are stored in the transcript store
and, when Kafka brokers are configured, published as turn events.

Use --room to resume a stored room. Type /room to print the current room
id, and /exit or Ctrl+D to quit. Ctrl+C stops the answer being streamed
and keeps what arrived so far.

Examples:
  edrila chat
  edrila chat --endpoint https://panel.example.com/api/ai/chat --token $TOKEN
  edrila chat --room 42 --sqlite ./history.sqlite`

const chatShortDesc string = "Chat with the admin panel assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)

			cfg := config.FromViper(v)
			cmder.endpoint = cfg.Assistant.Endpoint
			cmder.token = cfg.Assistant.Token
			cmder.timeout = cfg.Assistant.TimeoutSeconds
			cmder.sqlitePath = cfg.Storage.SQLitePath
			cmder.postgresDSN = cfg.Storage.PostgresDSN
			cmder.kafkaBrokers = cfg.Events.KafkaBrokers
			cmder.kafkaTopic = cfg.Events.KafkaTopic
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.Flags, config.FlagToken, &cmder.token)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)

	cmd.Flags().StringVarP(&cmder.roomID, "room", "r", "", "Resume an existing room by id")
	cmd.Flags().StringVar(&cmder.dumpPath, "dump", "", "Append every raw response stream to this file")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	driver, err := c.openStorage(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Source:    eventstream.EventSource{Client: clientName, Endpoint: c.endpoint},
		Logger:    c.logger.With("component", "worker"),
	})
	if err != nil {
		return fmt.Errorf("starting turn workers: %w", err)
	}
	// Drain queued turns before the publisher and store go away.
	defer publisher.Close()
	defer pool.Close()

	var tap io.Writer
	if c.dumpPath != "" {
		f, err := os.OpenFile(c.dumpPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening dump file: %w", err)
		}
		defer f.Close()
		tap = f
	}

	client, err := assistant.NewClient(assistant.Config{
		Endpoint: c.endpoint,
		Token:    c.token,
		Timeout:  time.Duration(c.timeout) * time.Second,
		Tap:      tap,
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}

	conv, err := c.loadConversation(ctx, driver)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Endpoint:"),
		cliui.NameStyle.Render(c.endpoint),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(c.out)
			return nil
		case "/room":
			fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Room:"), roomLabel(conv.RoomID()))
			continue
		}

		job, err := c.turn(ctx, client, conv, input)
		if err != nil {
			fmt.Fprintf(c.errOut, "  %s %v\n", cliui.FailMark, err)
		}
		if job != nil && !pool.Enqueue(*job) {
			c.logger.Warn("turn dropped, worker queue full", "room_id", job.RoomID)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// turn runs one exchange. The returned job is nil only when no session could
// be opened.
func (c *chatCommander) turn(ctx context.Context, client *assistant.Client, conv *conversation.Conversation, input string) (*worker.Job, error) {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprint(c.out, assistantPrompt)
	started := time.Now()

	s, err := conv.Begin(input, conversation.WithContentHook(func(fragment string) {
		fmt.Fprint(c.out, fragment)
	}))
	if err != nil {
		return nil, err
	}

	res, err := client.Submit(turnCtx, s, input)
	c.printOutcome(s, res, err)

	return &worker.Job{
		RoomID:    res.RoomID,
		Turn:      s.Turn(),
		State:     res.State,
		Err:       err,
		StartedAt: started,
		Duration:  res.Duration,
		Frames:    res.Frames,
	}, err
}

func (c *chatCommander) printOutcome(s *conversation.Session, res *assistant.Result, err error) {
	switch res.State {
	case conversation.StateCancelled:
		fmt.Fprintf(c.out, " %s", cliui.DimStyle.Render("(stopped)"))
	case conversation.StateErrored:
		// A server error on an empty answer becomes a notice message.
		if res.Content == "" {
			if m, ok := lastAssistant(s.Turn()); ok {
				fmt.Fprint(c.out, cliui.WarnStyle.Render(m.Content))
			}
		}
	}

	fmt.Fprintf(c.out, "\n  %s %s\n\n",
		cliui.Mark(err),
		cliui.DimStyle.Render(fmt.Sprintf("%s · %d frames", cliui.FormatDuration(res.Duration), res.Frames)),
	)
}

func (c *chatCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(c.errOut),
	)
	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(
		logger.WithDebug(true),
		logger.WithJSON(true),
		logger.WithSource(c.debug),
		logger.WithWriter(f),
	)
	c.logger = logger.Multi(console, file)
	return func() { _ = f.Close() }, nil
}

func (c *chatCommander) openStorage(ctx context.Context) (storage.Driver, error) {
	historyPath, err := dotdir.NewManager().HistoryPath(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving history path: %w", err)
	}

	sc := factory.Config{
		SQLitePath:  c.sqlitePath,
		PostgresDSN: c.postgresDSN,
		Logger:      c.logger,
	}.OrSQLite(historyPath)

	driver, err := factory.Open(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("opening transcript store: %w", err)
	}
	return driver, nil
}

func (c *chatCommander) newPublisher() (eventstream.Publisher, error) {
	cfg := config.EventsConfig{KafkaBrokers: c.kafkaBrokers, KafkaTopic: c.kafkaTopic}
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	p, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.kafkaTopic,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	c.logger.Debug("publishing turn events", "brokers", brokers, "topic", c.kafkaTopic)
	return p, nil
}

func (c *chatCommander) loadConversation(ctx context.Context, driver storage.Driver) (*conversation.Conversation, error) {
	if c.roomID == "" {
		fmt.Fprintf(c.out, "\n  %s New conversation\n", cliui.DimStyle.Render("●"))
		return conversation.New("", nil), nil
	}

	t, err := storage.LoadTranscript(ctx, driver, c.roomID)
	switch {
	case err == nil:
		fmt.Fprintf(c.out, "\n  %s Resuming room %s %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(utils.Truncate(c.roomID, 16)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", t.Len())),
		)
		return conversation.New(c.roomID, t), nil

	case storage.IsNotFound(err):
		fmt.Fprintf(c.out, "\n  %s No stored messages for room %s, continuing it fresh\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(c.roomID),
		)
		return conversation.New(c.roomID, nil), nil

	default:
		return nil, fmt.Errorf("loading room %s: %w", c.roomID, err)
	}
}

func lastAssistant(msgs []conversation.Message) (conversation.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == conversation.RoleAssistant {
			return msgs[i], true
		}
	}
	return conversation.Message{}, false
}

func roomLabel(id string) string {
	if id == "" {
		return cliui.DimStyle.Render("<not assigned yet>")
	}
	return cliui.NameStyle.Render(id)
}
