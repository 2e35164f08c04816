package main

import (
	"errors"
	"fmt"
	"os"

	"council-governance/internal/config"
	dbpkg "council-governance/internal/db"
	"council-governance/internal/eventsink"
	"council-governance/internal/governance"
	"council-governance/internal/kvstore"
	"council-governance/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootCmd wires the CLI surface using Cobra. Persistent flags are
// applied to the loaded config in loadCfg(). Subcommands implement the
// actual operations (proposal, vote, voter, config, council, strategy,
// stats, run).
var rootCmd = &cobra.Command{
	Use:           "govern",
	Short:         "Council Governance",
	Long:          "Manage council governance: proposals, weighted voting, the voter registry, node scoring, and voting strategies.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagDB     string
	flagRPC    string
	flagOutput string
	flagFrom   string
	flagDebug  bool
)

// Exit codes, one per governance failure class, so scripts can branch
// on why a command failed.
const (
	exitSuccess      = 0
	exitGeneralError = 1
	exitPrecondition = 3
	exitValidation   = 6
	exitUnauthorized = 7
	exitNotFound     = 8
)

// silentErr marks an error whose message was already shown to the user.
type silentErr struct{ error }

func (s silentErr) Unwrap() error { return s.error }

func init() {
	// Persistent flags to override defaults
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagRPC, "rpc", "", "CometBFT RPC base for the telemetry daemon (overrides RPC_URL)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", os.Getenv("GOVERN_FROM"), "Caller identity for writes (defaults to GOVERN_FROM)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Debug output: extra diagnostic logs")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := map[string]string{"version": Version, "commit": Commit, "build_date": BuildDate}
			return render(v, func() {
				fmt.Printf("govern %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			})
		},
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(codeForError(err))
	}
}

// codeForError maps an error onto its exit code by failure class.
func codeForError(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, governance.ErrValidation):
		return exitValidation
	case errors.Is(err, governance.ErrStateConflict):
		return exitPrecondition
	case errors.Is(err, governance.ErrUnauthorized):
		return exitUnauthorized
	case errors.Is(err, governance.ErrNotFound):
		return exitNotFound
	default:
		return exitGeneralError
	}
}

// loadCfg reads defaults + env via internal/config.Load() and then
// applies overrides from persistent flags (db, rpc, debug).
func loadCfg() config.Config {
	cfg := config.Load()
	if flagDB != "" {
		if err := cfg.SetDatabaseURL(flagDB); err != nil {
			fmt.Fprintf(os.Stderr, "warning: invalid --db, keeping DATABASE_URL: %v\n", err)
		}
	}
	if flagRPC != "" {
		cfg.RPCURL = flagRPC
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg
}

// App bundles the engine and its surroundings for one CLI invocation.
type App struct {
	Cfg    config.Config
	Log    *logger.Logger
	DB     *gorm.DB
	Engine *governance.Engine
}

// newApp opens the database when configured and builds the engine on top
// of it. Without a database the engine runs on an in-memory store, which
// only makes sense for the daemon and for experiments.
func newApp() (*App, error) {
	cfg := loadCfg()
	log := logger.NewWithWriter(cfg.Debug, os.Stderr)

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if gormDB != nil {
		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	eng, err := buildEngine(cfg, gormDB, log)
	if err != nil {
		return nil, err
	}
	return &App{Cfg: cfg, Log: log, DB: gormDB, Engine: eng}, nil
}

// buildEngine assembles the governance engine: DB-backed state and event
// journal when a database is present, in-memory otherwise.
func buildEngine(cfg config.Config, gormDB *gorm.DB, log *logger.Logger) (*governance.Engine, error) {
	var store kvstore.Store
	sinks := []governance.EventSink{eventsink.NewLog(log)}
	if gormDB != nil {
		store = kvstore.NewDB(gormDB)
		sinks = append(sinks, eventsink.NewDB(gormDB, log))
	} else {
		log.Printf("no database configured, state will not persist")
		store = kvstore.NewMemory()
	}

	return governance.New(governance.Options{
		Store:    store,
		Auth:     governance.NewAllowlist(cfg.Authorized()...),
		Executor: governance.NewLogExecutor(log),
		Events:   eventsink.NewMulti(sinks...),
		Log:      log,
	})
}
