package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flagLimit     int
	flagThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find indexed fragments similar to a query snippet",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Stop()

		matches, err := svc.QueryText(cmd.Context(), query, flagLimit, flagThreshold)
		if err != nil {
			return err
		}

		if len(matches) == 0 {
			fmt.Printf("No matches for %q\n", query)
			return nil
		}

		for i, m := range matches {
			fmt.Printf("%d. %s:%d-%d (%s %s, similarity %.3f)\n",
				i+1, m.FilePath, m.StartLine, m.EndLine, m.Language, m.FragmentType, m.Similarity)
			for _, line := range strings.Split(m.Excerpt, "\n") {
				fmt.Printf("   | %s\n", line)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum results (default from config)")
	searchCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "minimum similarity (default from config)")
	rootCmd.AddCommand(searchCmd)
}
