package cli

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/xuzuoyang/gitbro/internal/config"
	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

type globalOptions struct {
	path       string
	configPath string
	debug      bool
	noColor    bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bro",
		Short: "bro is a git workflow assistant for fork-based development",
		Long: `bro is a git workflow assistant for fork-based development.

It starts branches from the upstream repository, keeps them in sync,
retires them once merged and manages their pull requests.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := newContext(cmd, opts)
			if err != nil {
				return err
			}
			cmd.SetContext(runtime.WithContext(cmd.Context(), ctx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.FromContext(cmd.Context())
			if err != nil {
				return nil
			}
			return ctx.Splog.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.path, "path", "p", ".", "Path of the git repository")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $BRO_CONFIG or ~/.config/bro/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Print debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newPickupCmd())
	rootCmd.AddCommand(newPipelineCmd())
	rootCmd.AddCommand(newPutoutCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPullRequestCmd())

	return rootCmd
}

func newContext(cmd *cobra.Command, opts *globalOptions) (*runtime.Context, error) {
	output.ConfigureColors(opts.noColor)

	splogOpts := output.SplogOptions{
		Writer:  cmd.OutOrStdout(),
		Debug:   opts.debug || os.Getenv("DEBUG") != "",
		LogFile: output.GetLogFilePath(),
	}
	splog, err := output.NewSplogWithConfig(splogOpts)
	if err != nil {
		// Logging to a file is best effort
		splogOpts.LogFile = ""
		if splog, err = output.NewSplogWithConfig(splogOpts); err != nil {
			return nil, err
		}
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	ctx := runtime.NewContext(splog, cfg, opts.path)
	ctx.Context = cmd.Context()
	ctx.ConfigPath = configPath
	if output.IsTTY() {
		ctx.Prompt = promptPassword
	}
	splog.Logger().Debug("starting", "command", cmd.CommandPath(), "path", opts.path, "config", configPath)
	return ctx, nil
}

func promptPassword(username string) (string, error) {
	var password string
	prompt := &survey.Password{Message: fmt.Sprintf("Password for %s:", username)}
	if err := survey.AskOne(prompt, &password); err != nil {
		return "", fmt.Errorf("canceled")
	}
	return password, nil
}

// run provides the runtime context to a command's execution function
func run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return fn(ctx)
}
