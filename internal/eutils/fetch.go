// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"net/url"
)

// Fetch retrieves one article's full JATS XML document from efetch.fcgi.
// The returned bytes are the record's raw document; the caller never
// mutates them.
func (c *Client) Fetch(ctx context.Context, recordID string) ([]byte, error) {
	if recordID == "" {
		return nil, fmt.Errorf("empty record id")
	}

	params := url.Values{
		"db":      {c.cfg.Database},
		"id":      {recordID},
		"retmode": {"xml"},
		"tool":    {toolName},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}

	return c.get(ctx, "efetch", efetchBase+"?"+params.Encode())
}

// FetchPage retrieves the rendered PMC article page for a record. The
// page carries the CDN image URLs that the JATS graphic hrefs resolve to.
func (c *Client) FetchPage(ctx context.Context, recordID string) ([]byte, error) {
	if recordID == "" {
		return nil, fmt.Errorf("empty record id")
	}
	return c.get(ctx, "article page", fmt.Sprintf("%sPMC%s/", articleBase, recordID))
}
