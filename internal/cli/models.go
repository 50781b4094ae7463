package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/api"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List checkpoints available on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return listModels(ctx, newClient(cfg), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func listModels(ctx context.Context, client *api.Client, w io.Writer) error {
	resp, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(resp.Models) == 0 {
		fmt.Fprintln(w, "No models found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tFILE\tSIZE\tCONFIG\tPATH")
	for _, m := range resp.Models {
		config := "yes"
		if !m.HasConfig {
			config = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f MB\t%s\t%s\n", m.Game, m.Filename, m.SizeMB, config, m.Path)
	}
	return tw.Flush()
}
