package main

import (
	"fmt"

	"github.com/leonardotrapani/tapdeck/internal/bus"
	"github.com/leonardotrapani/tapdeck/internal/config"
	"github.com/leonardotrapani/tapdeck/internal/daemon"
	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "tapdeck",
	Short: "Automatic meeting recorder with transcription and summaries",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		statusCmd(),
		watchesCmd(),
		sessionsCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending and active recording counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func watchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watches",
		Short: "List tracked applications and recording state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdWatches)
			if err != nil {
				return fmt.Errorf("failed to list watches: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdVersion)
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdQuit)
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			baseDir := cfg.Storage.BaseDir
			if baseDir == "" {
				baseDir, err = session.DefaultBaseDir()
				if err != nil {
					return err
				}
			}

			entries, err := session.NewStore(baseDir).List()
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			fmt.Print(tui.RenderSessions(entries))
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	var onboarding bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for tapdeck.
This will guide you through setting up:
- Applications to record automatically
- Transcription settings and API key
- Summary model
- Notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(onboarding)
		},
	}

	cmd.Flags().BoolVar(&onboarding, "onboarding", false, "Run the guided onboarding wizard")

	return cmd
}

func runConfigure(onboarding bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg, onboarding)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps()

	return nil
}

func showNextSteps() {
	fmt.Println("Next Steps:")
	fmt.Println("1. Start the daemon: tapdeck serve")
	fmt.Println("2. Open a watched app and start playing audio")
	fmt.Println("3. Browse recordings: tapdeck sessions")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}
