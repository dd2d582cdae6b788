package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// tokenInspectCmd decodes a JWT-shaped token WITHOUT verifying the signature.
// Useful to check the expiry and binding of a minted scoped token.
var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <token>",
	Short: "Decode a token's claims without verifying the signature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := jwt.NewParser()
		token, _, err := parser.ParseUnverified(args[0], jwt.MapClaims{})
		if err != nil {
			return fmt.Errorf("parsing token: %w", err)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fmt.Errorf("unexpected claims type %T", token.Claims)
		}

		keys := make([]string, 0, len(claims))
		for k := range claims {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := newTable()
		t.AppendHeader(table.Row{"Claim", "Value"})
		bold := color.New(color.Bold)
		for _, k := range keys {
			t.AppendRow(table.Row{bold.Sprint(k), renderClaim(k, claims[k])})
		}
		t.Render()
		return nil
	},
}

func renderClaim(key string, v any) string {
	switch key {
	case "exp", "iat", "nbf":
		if f, ok := v.(float64); ok {
			ts := time.Unix(int64(f), 0)
			return fmt.Sprintf("%s (%s)", ts.Format(time.RFC3339), relativeTime(ts))
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return truncate(string(b), 100)
}

func relativeTime(ts time.Time) string {
	if d := time.Until(ts); d > 0 {
		return "in " + d.Round(time.Second).String()
	}
	return time.Since(ts).Round(time.Second).String() + " ago"
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}
