package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/avtan/pkg/config"
	"github.com/DrSkyle/avtan/pkg/version"
)

var (
	cfgFile string
	// cfgErr holds the read failure of an explicit --config file.
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "avtan",
	Short: "Named graph collection and key-value service",
	Long: `avtan - Graph Collection Service

Named graphs of labelled nodes and bonds, with traversal,
path search and a key-value side store over HTTP.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	d := config.Default()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.avtan.yaml)")
	rootCmd.PersistentFlags().String("log-level", d.Log.Level, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", d.Log.JSON, "Emit JSON logs")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd)
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfgErr = nil
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.SetConfigFile(filepath.Join(home, ".avtan.yaml"))
		viper.SetConfigType("yaml")
	}
	// A missing default file is fine; an explicit one must parse.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		cfgErr = fmt.Errorf("read config %s: %w", cfgFile, err)
	}
}

// loadConfig resolves defaults, the config file, AVTAN_* env and flags.
func loadConfig() (config.Config, error) {
	if cfgErr != nil {
		return config.Config{}, cfgErr
	}
	return config.Load(viper.GetViper())
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("AVTAN %s", version.Current)))
	fmt.Fprintln(w, cmd.Short)

	fmt.Fprintln(w, titleStyle.Render("USAGE"))
	fmt.Fprintf(w, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(w, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, "  avtan serve                              # memory store on :18085")
	fmt.Fprintln(w, "  avtan serve --kv-backend redis --redis-url redis://localhost:6379/0")
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("FLAGS"))
	visit := func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(w, flagStyle.Render(output))
	}
	cmd.LocalFlags().VisitAll(visit)
	cmd.InheritedFlags().VisitAll(visit)
	fmt.Fprintln(w)
}
