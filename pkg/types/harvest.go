// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the figure-harvest pipeline.
package types

import (
	"encoding/json"
	"time"
)

// StampLayout formats timestamps for output identifiers and the
// generated_at field (e.g. "20260115_093042").
const StampLayout = "20060102_150405"

// SearchQuery holds the parameters of one harvest run. Immutable once built.
type SearchQuery struct {
	// Term is the PMC search term (non-empty).
	Term string `json:"term" yaml:"term"`

	// MaxResults is the maximum number of records to collect (positive).
	// Serialized as "retmax" to match the E-utilities parameter name.
	MaxResults int `json:"retmax" yaml:"retmax"`
}

// ImageCaptionPair is one figure extracted from an article: the image
// reference as present in the source markup (CDN URL when resolvable,
// otherwise the raw graphic href) and its caption text, whitespace-normalized.
type ImageCaptionPair struct {
	ImageRef string `json:"image_ref" yaml:"image_ref"`
	Caption  string `json:"caption" yaml:"caption"`
}

// RecordOutcome is the per-record result of the pipeline: either the pairs
// extracted from the article (possibly none) or the error that prevented
// fetching it. Exactly one of the two is meaningful; Err is empty on success.
type RecordOutcome struct {
	// RecordID is the PMC identifier returned by the search stage.
	RecordID string `json:"record_id" yaml:"record_id"`

	// Images holds the extracted pairs in document order.
	Images []ImageCaptionPair `json:"images,omitempty" yaml:"images,omitempty"`

	// Err describes why the record could not be fetched or parsed.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether this outcome records a per-record failure.
func (o RecordOutcome) Failed() bool { return o.Err != "" }

// MarshalJSON emits exactly one of the two outcome shapes: a record with
// its images array (present even when empty) or a record with its error.
func (o RecordOutcome) MarshalJSON() ([]byte, error) {
	if o.Failed() {
		return json.Marshal(struct {
			RecordID string `json:"record_id"`
			Err      string `json:"error"`
		}{o.RecordID, o.Err})
	}
	images := o.Images
	if images == nil {
		images = []ImageCaptionPair{}
	}
	return json.Marshal(struct {
		RecordID string             `json:"record_id"`
		Images   []ImageCaptionPair `json:"images"`
	}{o.RecordID, images})
}

// ResultSet is the complete output of one harvest run: the query, one
// outcome per search hit in search-result order, and the assembly timestamp.
// Built once per run and never mutated after assembly.
type ResultSet struct {
	Term    string          `json:"term" yaml:"term"`
	RetMax  int             `json:"retmax" yaml:"retmax"`
	Results []RecordOutcome `json:"results" yaml:"results"`

	// GeneratedAt is the assembly time, serialized in the same
	// YYYYMMDD_HHMMSS form used for the output identifier.
	GeneratedAt time.Time `json:"-" yaml:"-"`
}

// MarshalJSON serializes the result set with generated_at in StampLayout form.
func (rs ResultSet) MarshalJSON() ([]byte, error) {
	type alias ResultSet
	return json.Marshal(struct {
		alias
		GeneratedAt string `json:"generated_at"`
	}{alias(rs), rs.GeneratedAt.Format(StampLayout)})
}

// Failures returns the number of outcomes that record a failure.
func (rs *ResultSet) Failures() int {
	n := 0
	for _, o := range rs.Results {
		if o.Failed() {
			n++
		}
	}
	return n
}

// Pairs returns the total number of image/caption pairs across all outcomes.
func (rs *ResultSet) Pairs() int {
	n := 0
	for _, o := range rs.Results {
		n += len(o.Images)
	}
	return n
}
