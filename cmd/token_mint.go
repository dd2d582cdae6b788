package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/broker"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/config"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/policy"
	"github.com/youssefmrini/embed-dashboard-AIBI/pkg/client"
)

var (
	tokenMintViewerID string
	tokenMintValue    string
	tokenMintServer   string
)

// tokenMintCmd performs one full exchange from the CLI. With --server it asks
// a running broker instead of talking to the workspace directly.
var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a viewer-scoped dashboard token",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if tokenMintServer != "" {
			cli := client.New(tokenMintServer)
			embedCfg, correlation, err := cli.EmbedConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("requesting embed config: %w", err)
			}
			log.Debug().Str("correlation_id", correlation).Msg("embed config retrieved")
			return enc.Encode(embedCfg)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		viewer := cfg.Viewer()
		if tokenMintViewerID != "" {
			viewer.ExternalViewerID = tokenMintViewerID
		}
		if tokenMintValue != "" {
			viewer.ExternalValue = tokenMintValue
		}

		gate, err := policy.Compile(cfg.ViewerPolicy)
		if err != nil {
			return fmt.Errorf("compiling viewer policy: %w", err)
		}
		allowed, err := gate.Allow(viewer)
		if err != nil {
			return fmt.Errorf("evaluating viewer policy: %w", err)
		}
		if !allowed {
			return fmt.Errorf("viewer '%s' not allowed by policy", viewer.ExternalViewerID)
		}

		log.Info().Str("external_viewer_id", viewer.ExternalViewerID).Msg("Running token exchange...")
		brk := broker.New(cfg.InstanceURL, cfg.DashboardID, cfg.Identity(),
			&http.Client{Timeout: cfg.RequestTimeout})
		artifact, err := brk.Mint(cmd.Context(), viewer)
		if err != nil {
			return fmt.Errorf("minting failed: %w", err)
		}
		log.Info().Msg("Minted scoped token!")

		return enc.Encode(artifact)
	},
}

func init() {
	tokenCmd.AddCommand(tokenMintCmd)

	tokenMintCmd.Flags().StringVar(&tokenMintViewerID, "viewer-id", "", "Override the configured external viewer id")
	tokenMintCmd.Flags().StringVar(&tokenMintValue, "external-value", "", "Override the configured external value")
	tokenMintCmd.Flags().StringVar(&tokenMintServer, "server", "", "Address of a running broker to mint through")
}
