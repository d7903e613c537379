// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
)

// esearchResult is the eSearchResult XML envelope returned by
// esearch.fcgi.
type esearchResult struct {
	XMLName  xml.Name `xml:"eSearchResult"`
	Count    int      `xml:"Count"`
	RetMax   int      `xml:"RetMax"`
	RetStart int      `xml:"RetStart"`
	IDs      []string `xml:"IdList>Id"`
}

// Search returns up to maxResults record ids matching term, in the
// ranking order the remote search assigns. It paginates with an explicit
// retstart cursor: each call requests at most the configured page size,
// and pagination stops when maxResults is reached or the remote returns
// an empty page (corpus exhausted). Pages are always fetched
// sequentially; each cursor depends on the size of the prior page.
func (c *Client) Search(ctx context.Context, term string, maxResults int) ([]string, error) {
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}

	var ids []string
	seen := make(map[string]bool)

	for cursor := 0; len(ids) < maxResults; {
		pageSize := c.cfg.PageSize
		if remaining := maxResults - len(ids); remaining < pageSize {
			pageSize = remaining
		}

		page, err := c.searchPage(ctx, term, cursor, pageSize)
		if err != nil {
			return nil, err
		}
		if len(page.IDs) == 0 {
			break
		}

		for _, id := range page.IDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) == maxResults {
				break
			}
		}

		cursor += len(page.IDs)
		if cursor >= page.Count {
			break
		}
	}
	return ids, nil
}

// searchPage issues one esearch call at the given cursor.
func (c *Client) searchPage(ctx context.Context, term string, cursor, pageSize int) (*esearchResult, error) {
	params := url.Values{
		"db":       {c.cfg.Database},
		"term":     {term},
		"retmax":   {strconv.Itoa(pageSize)},
		"retstart": {strconv.Itoa(cursor)},
		"tool":     {toolName},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}

	body, err := c.get(ctx, "esearch", esearchBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result esearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return &result, nil
}
