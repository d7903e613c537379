// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest orchestrates the pipeline: search once, then fetch and
// extract every matched record, degrading per-record failures into
// recorded outcomes. Only a search-stage failure or an invalid query is
// fatal to a run.
package harvest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/figure-harvest/internal/extract"
	"github.com/pdiddy/figure-harvest/pkg/types"
)

const defaultWorkers = 3

// Client is the remote capability the collector drives. internal/eutils
// provides the production implementation; tests substitute mocks.
type Client interface {
	// Search returns up to maxResults record ids in ranking order.
	Search(ctx context.Context, term string, maxResults int) ([]string, error)

	// Fetch returns one record's raw article document.
	Fetch(ctx context.Context, recordID string) ([]byte, error)

	// FetchPage returns the record's rendered article page.
	FetchPage(ctx context.Context, recordID string) ([]byte, error)
}

// Cache is an optional local store of fetched documents keyed by record
// id. internal/cache provides the SQLite implementation.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, doc []byte) error
}

// Collector runs the fetch/extract stages over a search result set.
type Collector struct {
	client Client
	cache  Cache
	cfg    types.HarvestConfig
	w      io.Writer
}

// NewCollector builds a Collector. cache may be nil to disable caching;
// w receives human-readable progress (nil discards it).
func NewCollector(client Client, cache Cache, cfg types.HarvestConfig, w io.Writer) *Collector {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if w == nil {
		w = io.Discard
	}
	return &Collector{client: client, cache: cache, cfg: cfg, w: w}
}

// Collect searches for query.Term, fetches every matched record with a
// bounded worker pool, and extracts image/caption pairs from each. The
// returned outcomes are in search-ranking order, one per id, except when
// ctx is cancelled mid-batch: then the set accumulated so far is
// returned without error. A failure of the search stage itself is fatal
// and propagated; per-record failures never are.
func (c *Collector) Collect(ctx context.Context, query types.SearchQuery) (*types.ResultSet, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	ids, err := c.client.Search(ctx, query.Term, query.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("search stage: %w", err)
	}
	fmt.Fprintf(c.w, "search: %d record(s) for %q\n", len(ids), query.Term)

	outcomes := make([]types.RecordOutcome, len(ids))
	attempted := make([]bool, len(ids))

	type job struct {
		idx int
		id  string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				// Disjoint indices; no locking needed.
				outcomes[j.idx] = c.processRecord(ctx, j.id)
				attempted[j.idx] = true
			}
		}()
	}

dispatch:
	for i, id := range ids {
		select {
		case jobs <- job{idx: i, id: id}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	rs := &types.ResultSet{
		Term:    query.Term,
		RetMax:  query.MaxResults,
		Results: []types.RecordOutcome{},
	}
	for i := range outcomes {
		if attempted[i] {
			rs.Results = append(rs.Results, outcomes[i])
		}
	}
	if ctx.Err() != nil {
		fmt.Fprintf(c.w, "cancelled: returning %d of %d outcome(s)\n", len(rs.Results), len(ids))
	}
	return rs, nil
}

// processRecord fetches one record and extracts its figure pairs. Any
// error degrades to a failure outcome.
func (c *Collector) processRecord(ctx context.Context, id string) types.RecordOutcome {
	doc, err := c.fetchCached(ctx, "doc:"+id, c.client.Fetch, id)
	if err != nil {
		fmt.Fprintf(c.w, "failed:  PMC%s (%v)\n", id, err)
		return types.RecordOutcome{RecordID: id, Err: err.Error()}
	}

	var page []byte
	var cdn []string
	if c.cfg.ResolveCDN {
		var pageErr error
		page, pageErr = c.fetchCached(ctx, "page:"+id, c.client.FetchPage, id)
		if pageErr != nil {
			// Degraded, not failed: pairs keep their raw hrefs.
			fmt.Fprintf(c.w, "  warning: PMC%s page fetch failed: %v\n", id, pageErr)
		} else {
			cdn = extract.CDNLinks(page)
		}
	}

	pairs := extract.Pairs(doc, extract.JATS{CDNLinks: cdn})
	if len(pairs) == 0 && page != nil {
		// Some records carry no figure markup in their efetch XML but
		// do on the rendered page.
		pairs = extract.Pairs(page, extract.Page{})
	}
	fmt.Fprintf(c.w, "fetched: PMC%s (%d figure(s))\n", id, len(pairs))
	return types.RecordOutcome{RecordID: id, Images: pairs}
}

// fetchCached consults the cache before calling fetch and stores fetched
// documents back. Cache errors are ignored: the cache is an optimization,
// never a failure source.
func (c *Collector) fetchCached(ctx context.Context, key string, fetch func(context.Context, string) ([]byte, error), id string) ([]byte, error) {
	if c.cache != nil {
		if doc, ok, err := c.cache.Get(key); err == nil && ok {
			return doc, nil
		}
	}
	doc, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Put(key, doc); err != nil {
			fmt.Fprintf(c.w, "  warning: caching %s: %v\n", key, err)
		}
	}
	return doc, nil
}
