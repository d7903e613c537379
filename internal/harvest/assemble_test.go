// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/figure-harvest/pkg/types"
)

var fixedTime = time.Date(2026, 1, 15, 9, 30, 42, 0, time.UTC)

func withFixedClock(t *testing.T) {
	t.Helper()
	now = func() time.Time { return fixedTime }
	t.Cleanup(func() { now = time.Now })
}

func TestOutputID(t *testing.T) {
	tests := []struct {
		name string
		term string
		max  int
		want string
	}{
		{"single word", "histopathology", 10, "histopathology_10_20260115_093042"},
		{"multi word", "cancer biomarkers", 50, "cancer_biomarkers_50_20260115_093042"},
		{"extra whitespace", "  deep \t learning ", 7, "deep_learning_7_20260115_093042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputID(tt.term, tt.max, fixedTime); got != tt.want {
				t.Errorf("OutputID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	withFixedClock(t)
	c := testCollector(newMock("1", "2", "3"))

	id, rs, err := c.Assemble(context.Background(), "histopathology", 10)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if id != "histopathology_10_20260115_093042" {
		t.Errorf("outputID = %q", id)
	}
	if !rs.GeneratedAt.Equal(fixedTime) {
		t.Errorf("GeneratedAt = %v, want %v", rs.GeneratedAt, fixedTime)
	}
	if len(rs.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(rs.Results))
	}
}

func TestAssembleDeterministicWithinSecond(t *testing.T) {
	withFixedClock(t)
	c := testCollector(newMock("1"))

	first, _, err := c.Assemble(context.Background(), "repeatable", 5)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, _, err := c.Assemble(context.Background(), "repeatable", 5)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if first != second {
		t.Errorf("identifiers differ within the same second: %q vs %q", first, second)
	}
}

func TestAssembleInvalidQuery(t *testing.T) {
	m := newMock("1")
	c := testCollector(m)

	_, _, err := c.Assemble(context.Background(), "", 10)
	var iqe *InvalidQueryError
	if !errors.As(err, &iqe) {
		t.Errorf("err = %v, want InvalidQueryError", err)
	}
	if m.searchCalls != 0 {
		t.Errorf("search calls = %d, want 0", m.searchCalls)
	}
}

func TestWriteResultSet(t *testing.T) {
	withFixedClock(t)
	dir := t.TempDir()

	m := newMock("1", "2")
	m.fetchErr["2"] = errors.New("transient failure after retries: timeout")
	c := NewCollector(m, nil, types.HarvestConfig{Workers: 1}, &bytes.Buffer{})

	id, rs, err := c.Assemble(context.Background(), "cancer biomarkers", 2)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	path, err := WriteResultSet(dir, id, rs)
	if err != nil {
		t.Fatalf("WriteResultSet() error = %v", err)
	}
	if filepath.Base(path) != "cancer_biomarkers_2_20260115_093042.json" {
		t.Errorf("filename = %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dataset: %v", err)
	}

	var doc struct {
		Term        string `json:"term"`
		RetMax      int    `json:"retmax"`
		GeneratedAt string `json:"generated_at"`
		Results     []struct {
			RecordID string `json:"record_id"`
			Images   []struct {
				ImageRef string `json:"image_ref"`
				Caption  string `json:"caption"`
			} `json:"images"`
			Err string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshaling dataset: %v", err)
	}

	if doc.Term != "cancer biomarkers" {
		t.Errorf("term = %q", doc.Term)
	}
	if doc.RetMax != 2 {
		t.Errorf("retmax = %d, want 2", doc.RetMax)
	}
	if doc.GeneratedAt != "20260115_093042" {
		t.Errorf("generated_at = %q", doc.GeneratedAt)
	}
	if len(doc.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(doc.Results))
	}
	if doc.Results[0].Err != "" || len(doc.Results[0].Images) != 1 {
		t.Errorf("results[0] = %+v, want one pair and no error", doc.Results[0])
	}
	if !strings.Contains(doc.Results[1].Err, "timeout") {
		t.Errorf("results[1].error = %q, want the failure reason", doc.Results[1].Err)
	}

	// No temp litter left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want 1", len(entries))
	}
}
