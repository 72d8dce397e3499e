package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zipexplorer/internal/app"
	"zipexplorer/internal/config"
)

var version = "dev"

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand starts the interactive browser.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "zipexplorer [archive]",
		Version: version,
		Short:   "Browse the contents of ZIP archives",
		Long: `zipexplorer shows the directory structure and summary metadata of ZIP
archives, including password protected ones, in an interactive terminal browser.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			defer application.Close()
			application.StartMetrics()

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return application.RunUI(initial)
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newRecentCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the zipexplorer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return rootCmd
}

// loadConfig reads the config file named by --config and overlays the
// flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, string) {
	flags := cmd.Flags()
	path := config.ConfigFile(flags)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("config: %v (using defaults)", err))
	}
	return config.ApplyFlags(flags, cfg), path
}

func newApp(cmd *cobra.Command, logOutput string) (*app.App, error) {
	cfg, path := loadConfig(cmd)
	return app.New(cfg, path, logOutput)
}

func Execute() error {
	return NewRootCommand().Execute()
}
