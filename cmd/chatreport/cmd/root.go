package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/chatreport/internal/llm"
	"github.com/cognicore/chatreport/internal/service"
	"github.com/cognicore/chatreport/pkg/chatreport"
	"github.com/cognicore/chatreport/pkg/chatreport/config"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
	"github.com/cognicore/chatreport/pkg/chatreport/store/sqlite"
)

// app carries the settings shared by every subcommand. Values come from
// flags, then CHATREPORT_* environment variables, then defaults.
type app struct {
	v *viper.Viper
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree with fresh settings.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "chatreport",
		Short:         "Word-cloud and leaderboard reports for group chat exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "analysis config file (YAML)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log JSON lines instead of console output")
	pf.String("db", "chatreport.db", "SQLite database for stored reports")
	pf.String("llm-base-url", "", "OpenAI-compatible endpoint for word comments")
	pf.String("llm-model", "", "model name for word comments")
	pf.String("llm-api-key", "", "API key for the comment endpoint")
	if err := a.v.BindPFlags(pf); err != nil {
		panic(err)
	}
	a.v.SetEnvPrefix("CHATREPORT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.analyzeCmd(),
		a.serveCmd(),
		a.reportsCmd(),
		a.stopwordsCmd(),
	)
	return root
}

func (a *app) setupLogging() error {
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	if !a.v.GetBool("log-json") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return nil
}

func (a *app) engine() (*chatreport.Engine, error) {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	return chatreport.NewFromConfig(cfg)
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	return sqlite.OpenSQLite(ctx, a.v.GetString("db"))
}

func (a *app) commenter() llm.Commenter {
	if a.v.GetString("llm-base-url") == "" {
		return llm.Commenter{}
	}
	return llm.Commenter{Client: &llm.Client{
		BaseURL: a.v.GetString("llm-base-url"),
		APIKey:  a.v.GetString("llm-api-key"),
		Model:   a.v.GetString("llm-model"),
	}}
}

// service opens the store and builds a Service over it. The caller closes
// the returned store.
func (a *app) service(ctx context.Context, eng *chatreport.Engine) (*service.Service, store.Store, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(service.Options{
		Engine:    eng,
		Store:     st,
		Commenter: a.commenter(),
	})
	return svc, st, nil
}
