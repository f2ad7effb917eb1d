package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mihir205/Challenge-1b/internal/heading"
	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

var headingsCmd = &cobra.Command{
	Use:   "headings <pdf>",
	Short: "Print the heading candidates detected in one PDF",
	Long: `Headings runs only the typographic heading detector on a single PDF and
prints each candidate with its page number. Useful for tuning detection
thresholds against a troublesome document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := layout.NewPDFParser().Parse(args[0])
		if err != nil {
			return err
		}

		candidates := heading.NewExtractor(types.DefaultPipelineConfig().Heading).Extract(doc)
		if len(candidates) == 0 {
			fmt.Fprintln(os.Stderr, "no heading candidates detected")
			return nil
		}
		for _, c := range candidates {
			fmt.Printf("%d\t%s\n", c.PageNumber, c.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headingsCmd)
}
