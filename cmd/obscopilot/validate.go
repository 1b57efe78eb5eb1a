package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate workflow definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				w, err := workflow.LoadWorkflowFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed++
					continue
				}

				errs := workflow.Validate(w)
				if len(errs) > 0 {
					for _, verr := range errs {
						fmt.Fprintf(os.Stderr, "%s: %v\n", path, verr)
					}
					failed++
					continue
				}

				fmt.Printf("%s: ok (%s, %d triggers, %d nodes)\n",
					path, w.Name, len(w.Triggers), len(w.Nodes))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d workflow files failed validation", failed, len(args))
			}
			return nil
		},
	}
}
