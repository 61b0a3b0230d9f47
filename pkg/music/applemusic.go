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

package music

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/buger/jsonparser"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

const appleMusicAPIURL = "https://api.music.apple.com"

// AppleMusicClient searches the Apple Music catalog with a developer token.
type AppleMusicClient struct {
	token      string
	storefront string
	apiURL     string
	httpClient *http.Client
}

// NewAppleMusicClient returns nil without a developer token.
func NewAppleMusicClient(developerToken string, httpClient *http.Client) *AppleMusicClient {
	if developerToken == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &AppleMusicClient{token: developerToken, storefront: "us", apiURL: appleMusicAPIURL, httpClient: httpClient}
}

// FirstSongURL returns the music.apple.com link of the best match, or "" if none.
func (c *AppleMusicClient) FirstSongURL(ctx context.Context, query string) (string, error) {
	params := url.Values{"term": {query}, "types": {"songs"}, "limit": {"1"}}
	u := fmt.Sprintf("%s/v1/catalog/%s/search?%s", c.apiURL, c.storefront, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", utils.GetUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("apple music search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("apple music search: status %d", resp.StatusCode)
	}
	link, err := jsonparser.GetString(body, "results", "songs", "data", "[0]", "attributes", "url")
	if err != nil {
		return "", nil
	}
	return link, nil
}
