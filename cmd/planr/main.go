package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tj/go-naturaldate"

	"github.com/christopherklint97/planr/internal/config"
	"github.com/christopherklint97/planr/internal/service"
	"github.com/christopherklint97/planr/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "planr",
	Short: "Personal productivity assistant",
	Long: "planr keeps your tasks, answers plain-English requests about them, " +
		"packs pending work into time blocks and reminds you when things are due.",
	SilenceUsage: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles what every command needs once config and the database are open.
type env struct {
	cfg    *config.Config
	db     *store.DB
	svc    *service.Service
	logger *slog.Logger
	logOut io.Closer
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, logOut, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := store.Open()
	if err != nil {
		if logOut != nil {
			logOut.Close()
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{
		cfg:    cfg,
		db:     db,
		svc:    service.New(db, logger),
		logger: logger,
		logOut: logOut,
	}, nil
}

func (e *env) Close() {
	e.db.Close()
	if e.logOut != nil {
		e.logOut.Close()
	}
}

// userID returns the configured user or explains how to create one.
func (e *env) userID() (int64, error) {
	if e.cfg.User.ID <= 0 {
		return 0, fmt.Errorf("no user configured; run 'planr user add' first")
	}
	return e.cfg.User.ID, nil
}

// newLogger writes text logs to stderr, or appends to cfg.File when set.
func newLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}

// parseDate resolves YYYY-MM-DD or natural language ("tomorrow", "next
// friday") to local midnight of that day. Empty means today.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return midnight(now), nil
	}
	if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return d, nil
	}
	d, err := parseNatural(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return midnight(d), nil
}

// parseMoment is parseDate for instants: it keeps the time of day.
func parseMoment(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := parseNatural(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

var errUnrecognised = errors.New("not a recognised date or time")

// parseNatural wraps naturaldate, which hands back the reference time
// unchanged for input it cannot read.
func parseNatural(s string, now time.Time) (time.Time, error) {
	t, err := naturaldate.Parse(s, now, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, err
	}
	if t.Equal(now) {
		switch strings.ToLower(s) {
		case "now", "today":
		default:
			return time.Time{}, errUnrecognised
		}
	}
	return t, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[user]
id = %d

[schedule]
work_start = "%s"
work_end = "%s"

[notifications]
enabled = %t

[reminders]
poll_seconds = %d

[log]
level = "%s"
file = "%s"
`,
			cfg.User.ID,
			cfg.Schedule.WorkStart,
			cfg.Schedule.WorkEnd,
			cfg.Notifications.Enabled,
			cfg.Reminders.PollSeconds,
			cfg.Log.Level,
			cfg.Log.File,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
