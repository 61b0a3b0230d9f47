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

package types

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of catalog entry a search targets.
type Category int

const (
	CategoryShow Category = iota
	CategoryLiterature
	CategoryGame
	CategoryCharacter
)

// DefaultSearchLimit is the number of candidates shown when the caller does not choose.
const DefaultSearchLimit = 5

// MaxCandidates is the most results a selection can list (one per keycap emoji).
const MaxCandidates = 10

// TypeKey returns the catalog wire name, e.g. "shows".
func (c Category) TypeKey() string {
	switch c {
	case CategoryLiterature:
		return "literatures"
	case CategoryGame:
		return "games"
	case CategoryCharacter:
		return "characters"
	default:
		return "shows"
	}
}

func (c Category) String() string {
	switch c {
	case CategoryLiterature:
		return "literature"
	case CategoryGame:
		return "game"
	case CategoryCharacter:
		return "character"
	default:
		return "show"
	}
}

// ParseCategory accepts the command choice names and a few aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "show", "shows", "anime":
		return CategoryShow, nil
	case "literature", "literatures", "manga":
		return CategoryLiterature, nil
	case "game", "games":
		return CategoryGame, nil
	case "character", "characters":
		return CategoryCharacter, nil
	}
	return CategoryShow, fmt.Errorf("unknown category %q", s)
}

// SearchQuery is one user search, built per invocation and never modified.
type SearchQuery struct {
	Text     string
	Category Category
	Limit    int
}

// NewSearchQuery normalizes the text and clamps the limit to 1..MaxCandidates.
func NewSearchQuery(text string, category Category, limit int) SearchQuery {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxCandidates {
		limit = MaxCandidates
	}
	return SearchQuery{Text: strings.TrimSpace(text), Category: category, Limit: limit}
}

// Candidate is one ranked result offered for selection.
type Candidate struct {
	DisplayIndex int    // 1-based
	Title        string
	ShortMeta    string // e.g. "`TV-14` | **Finished Airing**"
	Badge        string // preformatted prefix such as a duration
	Ref          string // opaque handle for the resolver: catalog href or video ID
}

// Poll is a guild poll stored by the poll store.
type Poll struct {
	ID          string
	GuildID     string
	ChannelID   string
	MessageID   string
	CreatorID   string
	Title       string
	Description string
	Public      bool
	Closed      bool
	ClosedBy    string
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Options     []string
}

// PollTally is the vote count for one option, in option order.
type PollTally struct {
	Option string
	Votes  int
}

// APIResponse is a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
