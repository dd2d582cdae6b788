package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/config"
)

// configCheckCmd renders the resolved configuration with secrets masked and
// exits non-zero when required values are missing.
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the resolved configuration and verify required values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(cfgFile)
		if err != nil {
			return fmt.Errorf("resolving config: %w", err)
		}

		set := func(value string) string {
			if value == "" {
				return redCross + " (not set)"
			}
			return greenCheck + " (set)"
		}
		show := func(value string) string {
			if value == "" {
				return redCross + " (not set)"
			}
			return truncate(value, 60)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Setting", "Value"})
		bold := color.New(color.Bold)
		t.AppendRow(table.Row{bold.Sprint("Instance URL"), show(cfg.InstanceURL)})
		t.AppendRow(table.Row{bold.Sprint("Workspace ID"), show(cfg.WorkspaceID)})
		t.AppendRow(table.Row{bold.Sprint("Dashboard ID"), show(cfg.DashboardID)})
		t.AppendRow(table.Row{bold.Sprint("Client ID"), set(cfg.ClientID)})
		t.AppendRow(table.Row{bold.Sprint("Client Secret"), set(cfg.ClientSecret)})
		t.AppendRow(table.Row{bold.Sprint("External Viewer ID"), show(cfg.ExternalViewerID)})
		// the external value may carry PII, only report presence
		t.AppendRow(table.Row{bold.Sprint("External Value"), set(cfg.ExternalValue)})
		t.AppendRow(table.Row{bold.Sprint("Listen Address"), cfg.Addr})
		t.AppendRow(table.Row{bold.Sprint("Request Timeout"), cfg.RequestTimeout.String()})
		t.AppendRow(table.Row{bold.Sprint("Viewer Policy"), set(cfg.ViewerPolicy)})
		t.Render()

		if err := cfg.Validate(); err != nil {
			return err
		}
		log.Info().Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}
