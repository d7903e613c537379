// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract walks article documents and pairs each figure's image
// reference with its caption text. The core is format-agnostic: a Format
// knows how to locate figure regions in one document shape (JATS XML,
// rendered PMC page), the core applies the emission rules. Extraction is
// pure: it never mutates the input and never fails on malformed markup;
// unresolvable regions are skipped.
package extract

import (
	"strings"

	"github.com/pdiddy/figure-harvest/pkg/types"
)

// Figure is one raw figure region as located by a Format: the image
// reference and caption text exactly as present in the markup, before
// normalization.
type Figure struct {
	ImageRef string
	Caption  string
}

// Format locates figure regions in one document shape, in document order.
// Implementations skip regions they cannot resolve rather than erroring.
type Format interface {
	Name() string
	Figures(doc []byte) []Figure
}

// Pairs extracts image/caption pairs from doc using f, preserving
// document order. A figure with no image reference, or whose caption is
// empty after whitespace normalization, is dropped: no pair is ever
// emitted with an empty caption.
func Pairs(doc []byte, f Format) []types.ImageCaptionPair {
	var pairs []types.ImageCaptionPair
	for _, fig := range f.Figures(doc) {
		caption := NormalizeWhitespace(fig.Caption)
		if fig.ImageRef == "" || caption == "" {
			continue
		}
		pairs = append(pairs, types.ImageCaptionPair{
			ImageRef: fig.ImageRef,
			Caption:  caption,
		})
	}
	return pairs
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and
// trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
