// Package cli wires the cairn commands together.
//
// Each built-in skill is one subcommand built by its newXxxCommand
// constructor; run, skills, and describe round out the surface. Commands
// share an [App] carrying the loaded configuration, the built-in skill
// registry, and the output streams, so tests drive the full command path
// against buffers without touching the process.
//
// Guidance goes to stdout and nothing else does: errors, warnings, and logs
// all land on stderr. Usage errors surface as descriptive messages with a
// non-zero exit; the commands never guess at missing or malformed flags.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"cairn/internal/config"
	"cairn/internal/logger"
	"cairn/internal/presenter"
	"cairn/internal/skill"
	"cairn/internal/skill/deepthink"
	"cairn/internal/skill/execute"
	"cairn/internal/skill/plan"
	"cairn/internal/skill/refactor"
	"cairn/internal/skill/review"
)

// App carries the shared dependencies every command draws on.
type App struct {
	Config *config.Config
	Skills *skill.Registry
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp builds an App on the process streams.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config: cfg,
		Skills: BuiltinSkills(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// BuiltinSkills returns the registry of the five built-in skills.
func BuiltinSkills() *skill.Registry {
	return skill.MustRegistry(
		plan.New(),
		execute.New(),
		review.New(),
		refactor.New(),
		deepthink.New(),
	)
}

// NewRootCommand assembles the root command and its subcommands.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cairn",
		Short: "Step-workflow guidance for LLM coding agents",
		Long: `cairn dispenses step-by-step workflow guidance to an orchestrating agent.

The orchestrator invokes a skill with --step and --total-steps plus the
state it is told to echo back, reads the guidance block from stdout, acts
on it, and re-invokes with the flags the guidance names. cairn itself runs
nothing and stores nothing: identical flags always print identical bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				return logger.SetLogLevel(lvl)
			}
			return nil
		},
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	pf := root.PersistentFlags()
	pf.String("format", "", `guidance format: "text" or "tags" (default from config)`)
	pf.String("log-level", "", "diagnostic log level: debug, info, warn, error")

	root.AddCommand(
		newPlanCommand(app),
		newExecuteCommand(app),
		newReviewCommand(app),
		newRefactorCommand(app),
		newDeepthinkCommand(app),
		newRunCommand(app),
		newSkillsCommand(app),
		newDescribeCommand(app),
	)
	return root
}

// Execute loads configuration, runs the command line, and returns the
// process exit code. main defers to it directly.
func Execute() int {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		presenter.Error(err, "loading configuration")
		return 1
	}
	if err := logger.SetLogLevel(cfg.Log.Level); err != nil {
		presenter.Error(err, "configuring logging")
		return 1
	}
	logger.SetLogFormat(cfg.Log.Format)

	return NewApp(cfg).Run(os.Args[1:])
}

// Run executes one command line against the app and returns the exit code.
// Errors that are not explicit [ExitError]s print through the presenter and
// exit 1.
func (app *App) Run(args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return code
		}
		p := presenter.NewWithOptions(app.Stderr, app.Stderr, presenter.ColorAuto)
		p.Error(err, "")
		return 1
	}
	return 0
}
