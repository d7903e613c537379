// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cdnHost identifies NCBI's image CDN in rendered article pages.
const cdnHost = "cdn.ncbi.nlm.nih.gov"

// Page locates figures in a rendered PMC article page. The page's native
// association is the <figure> element: the image reference is its first
// <img> src and the caption its <figcaption> text. Figures without a
// figcaption fall back to nothing and are dropped by the core.
type Page struct{}

// Name returns the format identifier.
func (Page) Name() string { return "pmc-page" }

// Figures parses the page with goquery. An unparsable page yields no
// figures.
func (Page) Figures(doc []byte) []Figure {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil
	}

	var figures []Figure
	d.Find("figure").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Find("img").First().Attr("src")
		figures = append(figures, Figure{
			ImageRef: absoluteURL(src),
			Caption:  s.Find("figcaption").First().Text(),
		})
	})
	return figures
}

// CDNLinks collects the page's CDN-hosted image URLs in document order.
// These are what JATS graphic hrefs resolve against.
func CDNLinks(page []byte) []string {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var links []string
	d.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || !strings.Contains(src, cdnHost) {
			return
		}
		links = append(links, absoluteURL(src))
	})
	return links
}

// absoluteURL upgrades protocol-relative URLs ("//cdn...") to https.
func absoluteURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}
