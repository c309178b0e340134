package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gerri254/chainctl/internal/config"
	"github.com/Gerri254/chainctl/internal/notify"
	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/internal/session"
	"github.com/Gerri254/chainctl/internal/store"
	"github.com/Gerri254/chainctl/internal/ui"
	"github.com/Gerri254/chainctl/pkg/chainapi"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	apiBase    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "chainctl",
	Short: "Terminal client for the SkillChain and ProcureChain platforms",
	Long: `chainctl talks to the shared SkillChain/ProcureChain backend.

SkillChain: browse verified-skill job postings, apply, and review
applicants. ProcureChain: search public tenders, submit bids, file
reports, and work the anomaly queue.

Sign in once with "chainctl auth login"; the session persists across
runs.`,
	Version:       fmt.Sprintf("%s (built at %s)", version, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		chainapi.SetLogger(logger)
		notify.SetLogger(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML file")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "API base URL (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// app is the wired-up client state every command runs against.
type app struct {
	cfg    *config.Config
	store  *store.Store
	sess   *session.Manager
	client *chainapi.Client
	feed   *notify.Feed
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiBase != "" {
		cfg.APIBaseURL = apiBase
	}

	st, err := store.Open(ctx, cfg.StatePath)
	if err != nil {
		return nil, err
	}
	sess, err := session.NewManager(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	client, err := chainapi.NewClient(cfg.APIBaseURL, cfg.Client, sess)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  st,
		sess:   sess,
		client: client,
		feed:   notify.NewFeed(),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("close state store", "error", err)
	}
}

func (a *app) env() pages.Env {
	return pages.Env{Session: a.sess, Client: a.client, Feed: a.feed}
}

// printFeed shows every notification the command produced, newest last.
func (a *app) printFeed() {
	entries := a.feed.Recent(0)
	for i := len(entries) - 1; i >= 0; i-- {
		n := entries[i]
		fmt.Printf("%s %s\n", ui.NotificationBadge(n.Severity), n.Message)
	}
}

// friendly turns a page redirect into an actionable message instead of an
// internal route.
func friendly(err error) error {
	to, ok := pages.IsRedirect(err)
	if !ok {
		return err
	}
	if to == "/login" {
		return fmt.Errorf("not signed in; run \"chainctl auth login\" first")
	}
	return fmt.Errorf("this command is not available for your role")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
