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
	"strings"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/kurozora/kurozora-bot/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com"
)

// SpotifyClient finds tracks with the client credentials flow.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client
	limiter      *rate.Limiter

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewSpotifyClient returns nil when credentials are missing.
func NewSpotifyClient(clientID, clientSecret string, httpClient *http.Client) *SpotifyClient {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		apiURL:       spotifyAPIURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
	}
}

// accessToken returns the cached token, fetching a new one a minute before expiry.
func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token: %w", err)
	}
	token, err := jsonparser.GetString(body, "access_token")
	if err != nil || token == "" {
		return "", fmt.Errorf("spotify token: missing access_token")
	}
	ttl, err := jsonparser.GetInt(body, "expires_in")
	if err != nil || ttl <= 0 {
		ttl = 3600
	}
	c.token = token
	c.expires = time.Now().Add(time.Duration(ttl)*time.Second - time.Minute)
	utils.DebugLog("Spotify: new token %s valid for %ds", utils.MaskString(token), ttl)
	return token, nil
}

// FirstTrackURL returns the open.spotify.com link of the best match, or "" if none.
func (c *SpotifyClient) FirstTrackURL(ctx context.Context, query string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	params := url.Values{"q": {query}, "type": {"track"}, "limit": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("spotify search: %w", err)
	}
	link, err := jsonparser.GetString(body, "tracks", "items", "[0]", "external_urls", "spotify")
	if err != nil {
		return "", nil
	}
	return link, nil
}

func (c *SpotifyClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", utils.GetUserAgent())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}
