// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// JATS locates figures in PMC efetch output (JATS article XML). A figure
// region is a <fig> element; its image reference is the xlink:href of the
// first <graphic> inside it and its caption is the text content of its
// <caption> element. When CDNLinks is set, graphic hrefs are resolved to
// the matching CDN URL from the rendered article page; unmatched hrefs
// are kept as-is.
type JATS struct {
	CDNLinks []string
}

// Name returns the format identifier.
func (JATS) Name() string { return "jats" }

// Figures token-walks the document rather than unmarshaling it: captions
// carry arbitrary inline markup (<italic>, <xref>, ...) whose character
// data a struct decode would drop. A decode error mid-stream ends the
// walk; figures located before the error are still returned.
func (j JATS) Figures(doc []byte) []Figure {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var figures []Figure
	var cur *Figure
	figDepth := 0
	inCaption := false
	var caption strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "fig":
				figDepth++
				if figDepth == 1 {
					cur = &Figure{}
					caption.Reset()
				}
			case "graphic", "inline-graphic":
				if cur != nil && cur.ImageRef == "" {
					cur.ImageRef = j.resolve(hrefAttr(t))
				}
			case "caption":
				if cur != nil {
					inCaption = true
				}
			}
		case xml.CharData:
			if inCaption {
				caption.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "title":
				// Block boundary inside a caption; inline elements
				// (italic, xref) contribute no separator.
				if inCaption {
					caption.WriteByte(' ')
				}
			case "caption":
				inCaption = false
			case "fig":
				figDepth--
				if figDepth == 0 && cur != nil {
					cur.Caption = caption.String()
					figures = append(figures, *cur)
					cur = nil
				}
				if figDepth < 0 {
					figDepth = 0
				}
			}
		}
	}
	return figures
}

// resolve matches a graphic href against the article page's CDN image
// URLs. The href is a bare filename stem; the page URL embeds it.
func (j JATS) resolve(href string) string {
	if href == "" {
		return ""
	}
	for _, link := range j.CDNLinks {
		if strings.Contains(link, href) {
			return link
		}
	}
	return href
}

// hrefAttr returns the element's xlink:href (or plain href) attribute.
func hrefAttr(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "href" {
			return attr.Value
		}
	}
	return ""
}
