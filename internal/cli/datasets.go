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

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List evaluation datasets available on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return listDatasets(ctx, newClient(cfg), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func listDatasets(ctx context.Context, client *api.Client, w io.Writer) error {
	resp, err := client.ListTestDataFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(resp.Files) == 0 {
		fmt.Fprintln(w, "No datasets found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tSHAPE\tPATH")
	for _, f := range resp.Files {
		shape := f.Shape
		if shape == "" {
			shape = "-"
		}
		fmt.Fprintf(tw, "%s\t%.1f MB\t%s\t%s\n", f.Name, f.SizeMB, shape, f.Path)
	}
	return tw.Flush()
}
