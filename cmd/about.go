package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/buildinfo"
	"github.com/youssefmrini/embed-dashboard-AIBI/pkg/client"
)

var aboutServer string

// aboutCmd prints build information, this binary's or a running broker's
// via --server.
var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.GetBuildInfo()
		if aboutServer != "" {
			remote, correlation, err := client.New(aboutServer).About(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching build info: %w", err)
			}
			log.Debug().Str("correlation_id", correlation).Msg("build info retrieved")
			info = *remote
		}

		t := newTable()
		bold := color.New(color.Bold)
		t.AppendRow(table.Row{bold.Sprint("Service"), info.Service})
		t.AppendRow(table.Row{bold.Sprint("Version"), info.Version})
		t.AppendRow(table.Row{bold.Sprint("Commit"), info.CommitHash})
		t.AppendRow(table.Row{bold.Sprint("About"), info.About})
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)

	aboutCmd.Flags().StringVar(&aboutServer, "server", "", "Address of a running broker to query instead of this binary")
}
