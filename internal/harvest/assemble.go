// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/figure-harvest/pkg/types"
)

// now is the assembly clock. Tests substitute a fixed time.
var now = time.Now

// InvalidQueryError reports a query rejected before any remote call.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Reason
}

// validateQuery enforces the query invariants: non-empty term, positive
// result cap.
func validateQuery(q types.SearchQuery) error {
	if strings.TrimSpace(q.Term) == "" {
		return &InvalidQueryError{Reason: "empty search term"}
	}
	if q.MaxResults <= 0 {
		return &InvalidQueryError{Reason: fmt.Sprintf("retmax must be positive, got %d", q.MaxResults)}
	}
	return nil
}

// Assemble runs the full pipeline for (term, maxResults): collect, stamp
// the assembly time, and derive the output identifier. The identifier is
// deterministic given the inputs and the stamped time, so repeated runs
// within the same wall-clock second produce the same identifier.
func (c *Collector) Assemble(ctx context.Context, term string, maxResults int) (string, *types.ResultSet, error) {
	query := types.SearchQuery{Term: term, MaxResults: maxResults}
	if err := validateQuery(query); err != nil {
		return "", nil, err
	}

	rs, err := c.Collect(ctx, query)
	if err != nil {
		return "", nil, err
	}

	rs.GeneratedAt = now()
	return OutputID(term, maxResults, rs.GeneratedAt), rs, nil
}

// OutputID derives the dataset identifier: the term with whitespace
// collapsed to underscores, the requested (not actual) result cap, and
// the assembly timestamp.
func OutputID(term string, maxResults int, at time.Time) string {
	slug := strings.Join(strings.Fields(term), "_")
	return slug + "_" + strconv.Itoa(maxResults) + "_" + at.Format(types.StampLayout)
}

// WriteResultSet serializes rs to dir/<outputID>.json, writing through a
// temp file and renaming on success so a crashed run never leaves a
// partial dataset. It returns the written path.
func WriteResultSet(dir, outputID string, rs *types.ResultSet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(rs, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshaling result set: %w", err)
	}

	destPath := filepath.Join(dir, outputID+".json")
	tmpFile, err := os.CreateTemp(dir, ".harvest-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing dataset: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}
