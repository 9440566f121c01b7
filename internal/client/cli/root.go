package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/carekeeper/internal/client/iocli"
	"github.com/iudanet/carekeeper/internal/config"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/logging"
	"github.com/iudanet/carekeeper/internal/models"
)

// VersionInfo сведения о сборке
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// app общее состояние команд: конфигурация читается при запуске команды
type app struct {
	v              *viper.Viper
	io             iocli.IO
	stderr         io.Writer
	configPath     string
	passphraseFile string
}

// NewRootCommand builds the client command tree.
func NewRootCommand(info VersionInfo, out iocli.IO, stderr io.Writer) *cobra.Command {
	a := &app{v: config.NewClientViper(), io: out, stderr: stderr}

	root := &cobra.Command{
		Use:           "carekeeper",
		Short:         "CareKeeper health record sync client",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("CareKeeper Client\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		info.Version, info.BuildDate, info.GitCommit))
	root.SetOut(out)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (yaml, toml or json)")
	flags.StringVar(&a.passphraseFile, "passphrase-file", "", "Path to file containing the local store passphrase")
	flags.String("server", "", "Server URL")
	flags.String("db", "", "Path to local database")
	flags.String("token", "", "Device token issued by the server")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Log file, rotated automatically")
	for key, flag := range map[string]string{
		"server_url": "server",
		"db_path":    "db",
		"token":      "token",
		"log.level":  "log-level",
		"log.file":   "log-file",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		a.statusCommand(),
		a.syncCommand(),
		a.pullCommand(),
		a.crisisCommand(),
		a.hotlineCommand(),
		a.submitCommand(),
		a.listenCommand(),
	)
	return root
}

// withCli загружает конфигурацию, разблокирует хранилище и выполняет fn
func (a *app) withCli(ctx context.Context, fn func(context.Context, *Cli, *Runtime, *config.Client) error) error {
	cfg, err := config.LoadClient(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	passphrase, err := ReadPassphrase(a.io, a.passphraseFile)
	if err != nil {
		return err
	}

	rt, err := Bootstrap(ctx, cfg, passphrase, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	c := New(a.io, rt.Orchestrator, rt.Storage, cfg.Budgets, cfg.Sync.UserID, cfg.Sync.DeviceID, logger)
	return fn(ctx, c, rt, cfg)
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show offline queue, dead letters and network quality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCli(cmd.Context(), func(_ context.Context, c *Cli, _ *Runtime, _ *config.Client) error {
				return c.runStatus()
			})
		},
	}
}

func (a *app) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued operations to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCli(cmd.Context(), func(ctx context.Context, c *Cli, _ *Runtime, _ *config.Client) error {
				return c.runSync(ctx)
			})
		},
	}
}

func (a *app) pullCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "pull [type...]",
		Short:     "Fetch remote changes and resolve conflicts",
		ValidArgs: entityTypeNames(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCli(cmd.Context(), func(ctx context.Context, c *Cli, _ *Runtime, _ *config.Client) error {
				return c.runPull(ctx, args)
			})
		},
	}
}

func (a *app) crisisCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crisis [entity-id]",
		Short: "Show the safety plan and emergency contacts within the crisis budget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			err := a.withCli(cmd.Context(), func(ctx context.Context, c *Cli, _ *Runtime, _ *config.Client) error {
				return c.runCrisis(ctx, id)
			})
			if err != nil {
				// хранилище недоступно: горячая линия и встроенный план все равно показываются
				runHotline(a.io)
				if data, mErr := json.MarshalIndent(guardian.FallbackSafetyPlan().Payload, "", "  "); mErr == nil {
					_, _ = a.io.Write(append(data, '\n'))
				}
			}
			return err
		},
	}
}

func (a *app) hotlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hotline",
		Short: "Show the crisis hotline (works offline, no passphrase needed)",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			runHotline(a.io)
		},
	}
}

func (a *app) submitCommand() *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "submit <file.json>",
		Short: "Save an entity locally and submit it with a priority",
		Long: `Reads {"id", "type", "payload", "delete"} from a JSON file.
An empty id creates a new entity; "delete": true removes the entity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}
			return a.withCli(cmd.Context(), func(ctx context.Context, c *Cli, _ *Runtime, _ *config.Client) error {
				return c.runSubmit(ctx, args[0], p)
			})
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", models.PriorityNormal.String(), "Priority: low, normal, high or crisis")
	return cmd
}

func (a *app) listenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Run background sync and pull changes on push notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCli(cmd.Context(), func(ctx context.Context, c *Cli, rt *Runtime, cfg *config.Client) error {
				if err := rt.Orchestrator.Start(ctx); err != nil {
					return err
				}
				broker, err := rt.ConnectBroker(cfg.MQTT, cfg.Sync.DeviceID)
				if err != nil {
					return err
				}
				return c.runListen(ctx, broker)
			})
		},
	}
}

func entityTypeNames() []string {
	types := models.AllEntityTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, info VersionInfo) int {
	root := NewRootCommand(info, iocli.NewStdio(), os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
