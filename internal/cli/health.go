package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the backend and report whether a model is loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return checkHealth(ctx, newClient(cfg), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func checkHealth(ctx context.Context, client *api.Client, w io.Writer) error {
	resp, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}

	fmt.Fprintf(w, "backend: %s\n", client.BaseURL())
	fmt.Fprintf(w, "status: %s\n", resp.Status)
	if resp.ModelLoaded {
		fmt.Fprintln(w, "model: loaded")
	} else {
		fmt.Fprintln(w, "model: not loaded (loads on first initialize)")
	}
	return nil
}
