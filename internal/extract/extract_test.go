// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"reflect"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "a caption", "a caption"},
		{"runs collapse", "a\t\tmulti  line\ncaption", "a multi line caption"},
		{"trimmed", "  padded  ", "padded"},
		{"whitespace only", " \n\t ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

const sampleArticle = `<?xml version="1.0"?>
<pmc-articleset><article xmlns:xlink="http://www.w3.org/1999/xlink">
 <body>
  <sec>
   <fig id="f1">
    <label>Figure 1</label>
    <caption><p>Tumor   tissue stained with <italic>H&amp;E</italic>.</p></caption>
    <graphic xlink:href="fig1-stain"/>
   </fig>
   <fig id="f2">
    <caption><p>   </p></caption>
    <graphic xlink:href="fig2-blank"/>
   </fig>
   <fig id="f3">
    <caption><p>Caption with no graphic.</p></caption>
   </fig>
   <fig id="f4">
    <caption><title>Survival curves.</title><p>Five-year follow-up.</p></caption>
    <graphic xlink:href="fig4-km"/>
   </fig>
  </sec>
 </body>
</article></pmc-articleset>`

func TestPairsJATS(t *testing.T) {
	pairs := Pairs([]byte(sampleArticle), JATS{})

	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2 (blank caption and missing graphic dropped)", len(pairs))
	}
	if pairs[0].ImageRef != "fig1-stain" {
		t.Errorf("pairs[0].ImageRef = %q, want fig1-stain", pairs[0].ImageRef)
	}
	if pairs[0].Caption != "Tumor tissue stained with H&E." {
		t.Errorf("pairs[0].Caption = %q (inline markup text must survive, whitespace collapse)", pairs[0].Caption)
	}
	if pairs[1].ImageRef != "fig4-km" {
		t.Errorf("pairs[1].ImageRef = %q, want fig4-km (document order)", pairs[1].ImageRef)
	}
	if pairs[1].Caption != "Survival curves. Five-year follow-up." {
		t.Errorf("pairs[1].Caption = %q", pairs[1].Caption)
	}
}

func TestPairsIdempotent(t *testing.T) {
	doc := []byte(sampleArticle)
	first := Pairs(doc, JATS{})
	second := Pairs(doc, JATS{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs:\n%v\n%v", first, second)
	}
}

func TestPairsJATSResolvesCDNLinks(t *testing.T) {
	cdn := []string{
		"https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig1-stain.jpg",
		"https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/other.jpg",
	}
	pairs := Pairs([]byte(sampleArticle), JATS{CDNLinks: cdn})
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].ImageRef != cdn[0] {
		t.Errorf("pairs[0].ImageRef = %q, want resolved CDN URL", pairs[0].ImageRef)
	}
	// No CDN match: raw href kept rather than a placeholder.
	if pairs[1].ImageRef != "fig4-km" {
		t.Errorf("pairs[1].ImageRef = %q, want raw href fig4-km", pairs[1].ImageRef)
	}
}

func TestJATSMalformedDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"empty", "", 0},
		{"not xml", "plain text, no markup", 0},
		{"truncated after one fig", `<article><fig><caption><p>Kept.</p></caption><graphic xlink:href="a"/></fig><fig><capt`, 1},
		{"no figures", `<article><body><p>words</p></body></article>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := Pairs([]byte(tt.doc), JATS{})
			if len(pairs) != tt.want {
				t.Errorf("len(pairs) = %d, want %d", len(pairs), tt.want)
			}
		})
	}
}

func TestJATSNestedFig(t *testing.T) {
	doc := `<article>
 <fig id="outer">
  <caption><p>Panel group.</p></caption>
  <fig id="inner"><caption><p>Panel A.</p></caption><graphic xlink:href="panel-a"/></fig>
 </fig>
</article>`
	pairs := Pairs([]byte(doc), JATS{})
	// The nested group collapses into one region with the first graphic.
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(pairs))
	}
	if pairs[0].ImageRef != "panel-a" {
		t.Errorf("ImageRef = %q, want panel-a", pairs[0].ImageRef)
	}
}

const samplePage = `<html><body>
 <img src="/static/header-logo.png"/>
 <figure>
  <img src="//cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig1-stain.jpg"/>
  <figcaption>Tumor  tissue,
   400x magnification.</figcaption>
 </figure>
 <figure>
  <img src="//cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig2.jpg"/>
 </figure>
 <img src="https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig3.jpg"/>
</body></html>`

func TestPairsPage(t *testing.T) {
	pairs := Pairs([]byte(samplePage), Page{})
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1 (captionless figure dropped)", len(pairs))
	}
	if pairs[0].ImageRef != "https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig1-stain.jpg" {
		t.Errorf("ImageRef = %q, want protocol-relative src upgraded to https", pairs[0].ImageRef)
	}
	if pairs[0].Caption != "Tumor tissue, 400x magnification." {
		t.Errorf("Caption = %q", pairs[0].Caption)
	}
}

func TestCDNLinks(t *testing.T) {
	links := CDNLinks([]byte(samplePage))
	want := []string{
		"https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig1-stain.jpg",
		"https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig2.jpg",
		"https://cdn.ncbi.nlm.nih.gov/pmc/blobs/abc/fig3.jpg",
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("CDNLinks() = %v, want %v (non-CDN images excluded)", links, want)
	}
}

func TestCDNLinksEmptyPage(t *testing.T) {
	if links := CDNLinks([]byte("<html><body>no images</body></html>")); len(links) != 0 {
		t.Errorf("CDNLinks() = %v, want none", links)
	}
}
