package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ai-advisor/pkg/registry"
)

func ActivitiesCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List and validate the Zeebe activities the worker manager serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tTIMEOUT\tRETRIES\tSTATUS")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.TaskType, a.Timeout, a.Retries, a.ImplementationStatus)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "registry", registry.DefaultPath, "Path to the activity registry")
	return cmd
}
