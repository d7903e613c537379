package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/figure-harvest/internal/cache"
	"github.com/pdiddy/figure-harvest/internal/eutils"
	"github.com/pdiddy/figure-harvest/internal/harvest"
	"github.com/pdiddy/figure-harvest/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "figure-harvest/0.1"

	// NCBI allows 3 req/s without an API key and 10 with one.
	keylessInterval = 334 * time.Millisecond
	keyedInterval   = 100 * time.Millisecond
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search PMC and extract figure/caption pairs",
	Long: `Harvest runs the full pipeline: search PMC for the term, fetch every
matched article, extract each figure's image reference and caption, and
write one <term>_<retmax>_<timestamp>.json dataset. Individual articles
that fail to fetch are recorded in the dataset; only a failure of the
search itself aborts the run.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("term", "", "PMC search term")
	harvestCmd.Flags().Int("retmax", 0, "maximum number of records to collect")
	harvestCmd.Flags().String("query-file", "", "YAML job file listing term/retmax pairs to run in sequence")
	harvestCmd.Flags().String("out-dir", ".", "directory for the output dataset")
	harvestCmd.Flags().Int("workers", 3, "parallel fetch workers")
	harvestCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	harvestCmd.Flags().Duration("interval", 0, "minimum gap between remote calls (default per NCBI policy)")
	harvestCmd.Flags().Int("retries", 0, "retry ceiling for transient failures (default 5)")
	harvestCmd.Flags().String("api-key", "", "NCBI API key (default from .secrets/ncbi-api-key)")
	harvestCmd.Flags().String("email", "", "contact email sent to NCBI (default from .secrets/ncbi-email)")
	harvestCmd.Flags().String("cache", "", "SQLite document cache path (empty disables caching)")
	harvestCmd.Flags().Bool("no-cdn", false, "skip resolving image refs against the article page CDN links")

	harvestCmd.MarkFlagsOneRequired("term", "query-file")
	harvestCmd.MarkFlagsMutuallyExclusive("term", "query-file")
	harvestCmd.MarkFlagsRequiredTogether("term", "retmax")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	term, _ := cmd.Flags().GetString("term")
	retmax, _ := cmd.Flags().GetInt("retmax")
	jobPath, _ := cmd.Flags().GetString("query-file")
	outDir, _ := cmd.Flags().GetString("out-dir")
	workers, _ := cmd.Flags().GetInt("workers")
	noCDN, _ := cmd.Flags().GetBool("no-cdn")
	cachePath, _ := cmd.Flags().GetString("cache")

	jobs := []types.SearchQuery{{Term: term, MaxResults: retmax}}
	var jf *harvest.JobFile
	if jobPath != "" {
		var err error
		if jf, err = harvest.ReadJobFile(jobPath); err != nil {
			return err
		}
		jobs = jf.Jobs
	}

	client := eutilsClientFromFlags(cmd)

	var store harvest.Cache
	if cachePath != "" {
		s, err := cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	collector := harvest.NewCollector(client, store, types.HarvestConfig{
		Workers:    workers,
		ResolveCDN: !noCDN,
		OutputDir:  outDir,
	}, os.Stderr)

	summary := harvest.JobSummary{Timestamp: time.Now()}
	for _, job := range jobs {
		outputID, rs, err := collector.Assemble(cmd.Context(), job.Term, job.MaxResults)
		if err != nil {
			return err
		}

		path, err := harvest.WriteResultSet(outDir, outputID, rs)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\n%d record(s), %d pair(s), %d failure(s)\n",
			len(rs.Results), rs.Pairs(), rs.Failures())
		fmt.Println(path)
		summary.Datasets = append(summary.Datasets, path)
		summary.Failures += rs.Failures()
	}

	if jf != nil {
		jf.Summary = &summary
		if err := harvest.WriteJobFile(jobPath, jf); err != nil {
			return err
		}
	}
	return nil
}

// eutilsClientFromFlags builds the shared-throttle E-utilities client
// from the command's connection flags and loaded secrets.
func eutilsClientFromFlags(cmd *cobra.Command) *eutils.Client {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")
	retries, _ := cmd.Flags().GetInt("retries")
	apiKey, _ := cmd.Flags().GetString("api-key")
	email, _ := cmd.Flags().GetString("email")

	apiKey = secretDefault("ncbi-api-key", apiKey)
	email = secretDefault("ncbi-email", email)

	if interval <= 0 {
		interval = keylessInterval
		if apiKey != "" {
			interval = keyedInterval
		}
	}

	cfg := types.EutilsConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:       apiKey,
		Email:        email,
		CallInterval: interval,
		MaxRetries:   retries,
	}
	return eutils.NewClient(cfg, eutils.NewThrottle(interval))
}
