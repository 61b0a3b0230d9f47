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

package config

import (
	"errors"
	"time"

	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// CredentialString is a secret that never prints in full.
type CredentialString string

// String masks the credential.
func (c CredentialString) String() string {
	return utils.MaskString(string(c))
}

// PlainText returns the raw value.
func (c CredentialString) PlainText() string {
	return string(c)
}

// DiscordConfig holds the gateway settings.
type DiscordConfig struct {
	Token      CredentialString
	AppID      string
	DevGuildID string
}

// CatalogConfig points at the Kurozora website and API.
type CatalogConfig struct {
	WebURL    string
	APIURL    string
	KisaraURL string
	RPS       float64
}

// MusicConfig holds the optional streaming service credentials.
type MusicConfig struct {
	SpotifyClientID     string
	SpotifyClientSecret CredentialString
	MusicKitToken       CredentialString
}

// DatabaseConfig selects the poll store.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// HTTPConfig is the status API. Port 0 disables it.
type HTTPConfig struct {
	Port   int
	APIKey CredentialString
}

// SelectionConfig tunes the reply windows.
type SelectionConfig struct {
	SearchWindow time.Duration
	TrackWindow  time.Duration
	NoticeTTL    time.Duration
	SearchLimit  int
}

// BotConfig is the whole runtime configuration.
type BotConfig struct {
	Discord     DiscordConfig
	Catalog     CatalogConfig
	Music       MusicConfig
	Database    DatabaseConfig
	HTTP        HTTPConfig
	Selection   SelectionConfig
	LinkCleaner bool
}

// Validate checks required settings and fills zero durations with defaults.
func (c *BotConfig) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required")
	}
	if c.Catalog.APIURL == "" {
		return errors.New("kurozora api url is required")
	}
	if c.Selection.SearchWindow <= 0 {
		c.Selection.SearchWindow = 30 * time.Second
	}
	if c.Selection.TrackWindow <= 0 {
		c.Selection.TrackWindow = 15 * time.Second
	}
	if c.Selection.NoticeTTL <= 0 {
		c.Selection.NoticeTTL = 5 * time.Second
	}
	if c.HTTP.Port < 0 {
		return errors.New("http port must not be negative")
	}
	return nil
}
