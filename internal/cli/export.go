package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ai-advisor/internal/advisor/export"
)

func EstimateCmd() *cobra.Command {
	var requests, avgTokens float64
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the monthly model cost in CNY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if requests < 0 || avgTokens < 0 {
				return fmt.Errorf("requests and tokens must not be negative")
			}
			cost := export.EstimateMonthlyCost(requests, avgTokens)
			fmt.Fprintf(cmd.OutOrStdout(), "%s CNY / 月\n", strconv.FormatFloat(cost, 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().Float64Var(&requests, "requests", 0, "Monthly request count")
	cmd.Flags().Float64Var(&avgTokens, "tokens", 0, "Average tokens per request")
	return cmd
}

func ExportCmd() *cobra.Command {
	var (
		in     export.ExportInput
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a solution summary as Markdown or HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := export.RenderMarkdown(in)
			switch format {
			case "md", "markdown":
			case "html":
				doc = export.RenderHTML(doc)
			default:
				return fmt.Errorf("unknown format %q (want md or html)", format)
			}

			if out == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Solution title")
	cmd.Flags().Float64Var(&in.EstimatedMonthlyCost, "cost", 0, "Estimated monthly cost in CNY")
	cmd.Flags().StringArrayVar(&in.Risks, "risk", nil, "Risk line (repeatable)")
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}
