/*
 * kurozora-bot is a Discord bot to search and share the Kurozora catalog.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package catalog talks to the Kurozora API: text search and per-entry
// details for shows, literatures, games and characters.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNoDetails is returned when a detail endpoint answers with an empty list.
var ErrNoDetails = errors.New("catalog returned no details")

const maxBodySize = 4 << 20

// Client queries the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	fetchers   int
}

// NewClient creates a client for baseURL (e.g. https://api.kurozora.app).
// rps limits outbound requests; zero or less disables the limiter.
func NewClient(baseURL string, rps float64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		fetchers:   3,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.GetUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog %s: status %d", path, resp.StatusCode)
	}
	return body, nil
}

// SearchRefs returns the detail hrefs for a query, best match first.
func (c *Client) SearchRefs(ctx context.Context, q types.SearchQuery) ([]string, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = types.DefaultSearchLimit
	}
	params := url.Values{}
	params.Set("scope", "kurozora")
	params.Set("types[]", q.Category.TypeKey())
	params.Set("query", q.Text)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/v1/search", params)
	if err != nil {
		return nil, err
	}

	var refs []string
	_, err = jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if href, err := jsonparser.GetString(value, "href"); err == nil && href != "" {
			refs = append(refs, href)
		}
	}, "data", q.Category.TypeKey(), "data")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if len(refs) > limit {
		refs = refs[:limit]
	}
	utils.DebugLog("Catalog: %q in %s -> %d result(s)", q.Text, q.Category.TypeKey(), len(refs))
	return refs, nil
}

// Details fetches the entry behind href (e.g. /v1/shows/42). Errors carry
// the failing call site.
func (c *Client) Details(ctx context.Context, href string) (*Entry, error) {
	e, err := c.details(ctx, href)
	if err != nil {
		return nil, utils.ErrorWithLocation(err)
	}
	return e, nil
}

func (c *Client) details(ctx context.Context, href string) (*Entry, error) {
	if !strings.HasPrefix(href, "/") {
		return nil, fmt.Errorf("invalid catalog href %q", href)
	}
	body, err := c.get(ctx, href, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []Entry `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode details %s: %w", href, err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", href, ErrNoDetails)
	}
	entry := payload.Data[0]
	if entry.Href == "" {
		entry.Href = href
	}
	return &entry, nil
}

// Lookup runs a search and fetches every hit's details, in rank order.
func (c *Client) Lookup(ctx context.Context, q types.SearchQuery) ([]*Entry, error) {
	refs, err := c.SearchRefs(ctx, q)
	if err != nil || len(refs) == 0 {
		return nil, err
	}

	entries := make([]*Entry, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchers)
	for i, href := range refs {
		i, href := i, href
		g.Go(func() error {
			e, err := c.Details(gctx, href)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Search implements selection.Catalog.
func (c *Client) Search(ctx context.Context, q types.SearchQuery) ([]types.Candidate, error) {
	entries, err := c.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]types.Candidate, 0, len(entries))
	for i, e := range entries {
		out = append(out, Candidate(e, q.Category, i+1))
	}
	return out, nil
}

// Candidate summarizes an entry as a selectable row.
func Candidate(e *Entry, category types.Category, index int) types.Candidate {
	c := types.Candidate{DisplayIndex: index, Title: e.DisplayName(), Ref: e.Href}
	if category == types.CategoryCharacter {
		return c
	}
	c.Badge = fmt.Sprintf("`%s`", utils.OrNA(string(e.Attributes.TVRating)))
	c.ShortMeta = fmt.Sprintf("**%s**", utils.OrNA(string(e.Attributes.Status)))
	return c
}
