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

// Package linkclean strips tracking parameters from links posted in chat
// and expands known URL shorteners.
package linkclean

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/kurozora/kurozora-bot/pkg/utils"
)

var linkPattern = regexp.MustCompile(`https?://\S+`)

var trackingParams = map[string]bool{
	"fbclid": true, "gclid": true, "dclid": true, "gbraid": true, "wbraid": true,
	"msclkid": true, "yclid": true, "mc_cid": true, "mc_eid": true, "igshid": true,
	"igsh": true, "ref_src": true, "ref_url": true, "_hsenc": true, "_hsmi": true,
	"mkt_tok": true, "spm": true, "trk": true, "oly_anon_id": true, "oly_enc_id": true,
	"vero_id": true, "rb_clickid": true, "s_cid": true,
}

var trackingPrefixes = []string{"utm_", "pk_", "hsa_"}

// host suffix -> extra params dropped for that provider
var providerParams = map[string][]string{
	"twitter.com": {"t", "s"},
	"x.com":       {"t", "s"},
	"youtube.com": {"si", "pp"},
	"youtu.be":    {"si"},
	"spotify.com": {"si", "context"},
}

var skippedHosts = []string{"cdn.discordapp.com", "media.discordapp.net"}

// DefaultShorteners are expanded before cleaning.
var DefaultShorteners = []string{
	"bit.ly", "t.co", "tinyurl.com", "ow.ly", "buff.ly", "goo.gl", "is.gd",
	"rebrand.ly", "cutt.ly", "shorturl.at", "lnkd.in", "amzn.to", "a.co",
	"spoti.fi", "trib.al", "dlvr.it", "vm.tiktok.com",
}

// Cleaner cleans links. The zero value cleans without expanding shorteners.
type Cleaner struct {
	httpClient *http.Client
	shorteners []string
	maxHops    int
}

// New returns a cleaner that expands DefaultShorteners with httpClient.
func New(httpClient *http.Client) *Cleaner {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &Cleaner{httpClient: &noRedirect, shorteners: DefaultShorteners, maxHops: 3}
}

// Extract returns every link in text, in order.
func Extract(text string) []string {
	found := linkPattern.FindAllString(text, -1)
	for i, l := range found {
		found[i] = strings.TrimRight(strings.TrimSpace(l), ">")
	}
	return found
}

// CleanMessage returns the cleaned form of every link in text that changed.
func (c *Cleaner) CleanMessage(ctx context.Context, text string) []string {
	var out []string
	for _, link := range Extract(text) {
		if cleaned, changed := c.Clean(ctx, link); changed {
			out = append(out, cleaned)
		}
	}
	return out
}

// Clean strips tracking from one link and reports whether anything changed.
func (c *Cleaner) Clean(ctx context.Context, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link, false
	}
	host := strings.ToLower(u.Hostname())
	if hostMatches(host, skippedHosts) {
		return link, false
	}

	expanded := false
	if c.isShortener(host) {
		if target, err := c.expand(ctx, link); err != nil {
			utils.DebugLog("Link cleaner: could not expand %s: %v", link, err)
		} else if t, err := url.Parse(target); err == nil && t.Host != "" {
			u, host, expanded = t, strings.ToLower(t.Hostname()), true
		}
	}

	drop := func(key string) bool {
		k := strings.ToLower(key)
		if trackingParams[k] {
			return true
		}
		for _, p := range trackingPrefixes {
			if strings.HasPrefix(k, p) {
				return true
			}
		}
		for suffix, params := range providerParams {
			if hostMatches(host, []string{suffix}) {
				for _, p := range params {
					if k == p {
						return true
					}
				}
			}
		}
		return false
	}

	query, removed := filterQuery(u.RawQuery, drop)
	fragment, fragRemoved := u.Fragment, false
	if strings.HasPrefix(strings.ToLower(u.Fragment), "utm_") {
		fragment, fragRemoved = "", true
	}
	if !removed && !fragRemoved && !expanded {
		return link, false
	}
	u.RawQuery = query
	u.Fragment = fragment
	u.RawFragment = ""
	cleaned := u.String()
	return cleaned, !strings.EqualFold(cleaned, link)
}

// filterQuery drops matching keys and keeps the order of the rest.
func filterQuery(raw string, drop func(string) bool) (string, bool) {
	if raw == "" {
		return raw, false
	}
	parts := strings.Split(raw, "&")
	kept := parts[:0]
	removed := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		key := p
		if i := strings.IndexByte(p, '='); i >= 0 {
			key = p[:i]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if drop(key) {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "&"), removed
}

func (c *Cleaner) isShortener(host string) bool {
	return c != nil && c.httpClient != nil && hostMatches(host, c.shorteners)
}

// expand follows redirects by hand, at most maxHops times.
func (c *Cleaner) expand(ctx context.Context, link string) (string, error) {
	current := link
	for hop := 0; hop < c.maxHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, current, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", utils.GetUserAgent())
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		resp.Body.Close()

		loc := resp.Header.Get("Location")
		if resp.StatusCode < 300 || resp.StatusCode >= 400 || loc == "" {
			if hop == 0 {
				return "", errors.New("no redirect")
			}
			return current, nil
		}
		base, _ := url.Parse(current)
		next, err := base.Parse(loc)
		if err != nil {
			return "", err
		}
		current = next.String()
		if !c.isShortener(strings.ToLower(next.Hostname())) {
			return current, nil
		}
	}
	return current, nil
}

func hostMatches(host string, suffixes []string) bool {
	host = strings.TrimPrefix(host, "www.")
	for _, s := range suffixes {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

// Reply formats the bot answer for cleaned links.
func Reply(links []string) string {
	if len(links) == 0 {
		return ""
	}
	word := "these"
	if len(links) == 1 {
		word = "this"
	}
	return "I cleaned " + word + " for you:\n" + strings.Join(links, "\n")
}
