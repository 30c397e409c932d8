package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/stamp/internal/app"
	"github.com/MrSnakeDoc/stamp/internal/config"
	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/store"
	"github.com/MrSnakeDoc/stamp/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stamp",
		Short:         "Timestamp bookmarks and A/B loops for video pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ stamp: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			return a.Run()
		},
	}
}

// openStore loads the env config and connects the configured backend
// with logs kept on stderr at warn level.
func openStore() (*config.Config, store.Gateway, error) {
	cfg := config.Load()
	gw, err := app.OpenGateway(cfg, logger.New("warn", false))
	if err != nil {
		return nil, nil, err
	}
	return cfg, gw, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resources with stored marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gw, err := openStore()
			if err != nil {
				return err
			}
			defer gw.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			ids, err := gw.ListResources(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				snap, err := gw.GetSnapshot(ctx, id)
				if err != nil || snap == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t?\n", id)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", id, len(snap.Order))
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		mode  string
		title string
	)

	cmd := &cobra.Command{
		Use:   "export [resource-id]",
		Short: "Print the marks of a resource as clipboard text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gw, err := openStore()
			if err != nil {
				return err
			}
			defer gw.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			resourceID := strings.TrimSpace(args[0])
			snap, err := gw.GetSnapshot(ctx, resourceID)
			if err != nil {
				return err
			}

			copyMode := domain.CopyMode(mode)
			if copyMode == "" {
				copyMode = domain.DefaultSettings().CopyMode
				if p, err := gw.GetSettings(ctx); err == nil && p != nil {
					copyMode = p.Apply(domain.DefaultSettings()).CopyMode
				}
			}

			lines, err := domain.ExportLines(domain.FromSnapshot(snap, nil).Marks(), copyMode, domain.ExportMeta{
				Title:    strings.TrimSpace(title),
				VideoURL: cfg.VideoBaseURL + resourceID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "timestamps_only | title_url_and_timestamps_with_links (default: stored setting)")
	cmd.Flags().StringVar(&title, "title", "", "title line for the link-bearing mode")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
