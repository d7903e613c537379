package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List PMC record ids matching a term",
	Long: `Search runs only the query stage: it pages through PMC search results
for the term and prints the matched record ids in ranking order, one per
line.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("term", "", "PMC search term (required)")
	searchCmd.Flags().Int("retmax", 20, "maximum number of ids to list")
	searchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	searchCmd.Flags().Duration("interval", 0, "minimum gap between remote calls (default per NCBI policy)")
	searchCmd.Flags().Int("retries", 0, "retry ceiling for transient failures (default 5)")
	searchCmd.Flags().String("api-key", "", "NCBI API key (default from .secrets/ncbi-api-key)")
	searchCmd.Flags().String("email", "", "contact email sent to NCBI (default from .secrets/ncbi-email)")

	searchCmd.MarkFlagRequired("term")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	term, _ := cmd.Flags().GetString("term")
	retmax, _ := cmd.Flags().GetInt("retmax")

	client := eutilsClientFromFlags(cmd)

	ids, err := client.Search(cmd.Context(), term, retmax)
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d record(s)\n", len(ids))
	return nil
}
