package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/accesstbilq/jovian/pkg/config"
	"github.com/accesstbilq/jovian/pkg/headless"
	"github.com/accesstbilq/jovian/pkg/logger"
	"github.com/accesstbilq/jovian/pkg/tui"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jovian",
	Short: "Terminal client for the Jovian portfolio agent",
	Long: `Chat with the Jovian portfolio agency assistant from the terminal.
Replies stream in incrementally; starting a new message cancels the previous
reply. Use --headless with --prompt for one-shot, scriptable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if err := logger.Init(); err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if viper.GetBool("headless") {
			return runHeadless(ctx)
		}
		return tui.StartApp(ctx)
	},
	SilenceUsage: true,
}

func runHeadless(ctx context.Context) error {
	prompt := viper.GetString("prompt")
	if prompt == "" {
		return fmt.Errorf("headless mode requires --prompt")
	}

	runner, err := headless.NewRunner()
	if err != nil {
		return fmt.Errorf("failed to initialize headless mode: %w", err)
	}
	return runner.Run(ctx, prompt)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .jovian/settings.yaml)")

	rootCmd.PersistentFlags().StringP("server", "s", "", "chat server base URL")
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().StringP("prompt", "p", "", "submit a prompt directly without entering the UI")
	viper.BindPFlag("prompt", rootCmd.PersistentFlags().Lookup("prompt"))

	rootCmd.PersistentFlags().BoolP("headless", "H", false, "run without the UI (requires --prompt)")
	viper.BindPFlag("headless", rootCmd.PersistentFlags().Lookup("headless"))

	rootCmd.Flags().Bool("no-highlight", false, "disable syntax highlighting of code blocks")
}

func initConfig() {
	if err := config.Init(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if noHighlight, err := rootCmd.Flags().GetBool("no-highlight"); err == nil && noHighlight {
		viper.Set("ui.highlight", false)
	}
}
