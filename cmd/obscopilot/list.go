package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			provider, err := newStorageProvider(cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to create storage provider: %w", err)
			}
			if err := provider.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer provider.Close()

			workflows, err := provider.WorkflowStore().GetAllWorkflows(enabledOnly)
			if err != nil {
				return fmt.Errorf("failed to list workflows: %w", err)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tENABLED\tTRIGGERS\tNODES")
			for _, w := range workflows {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\n",
					w.ID, w.Name, w.Enabled, len(w.Triggers), len(w.Nodes))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "only list enabled workflows")
	return cmd
}
