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

package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the catalog had nothing for the query or could not be reached.
	ErrNotFound = errors.New("no results")
	// ErrInvalidReply is a reply that is neither "cancel" nor an index in range.
	ErrInvalidReply = errors.New("invalid reply")
	// ErrTimedOut means the window elapsed without a valid reply.
	ErrTimedOut = errors.New("selection timed out")
	// ErrFetch means the chosen candidate could not be resolved.
	ErrFetch = errors.New("fetching details failed")
)

const (
	timedOutText   = "❌ | Search timed out..."
	fetchErrorText = "There was an error while fetching the details :("
)

// NotFoundText is sent when a search yields nothing.
func NotFoundText(query string) string {
	return fmt.Sprintf("No results were found for %s :(", query)
}

// InvalidReplyText is the transient notice for a rejected reply.
func InvalidReplyText(n int) string {
	return fmt.Sprintf("❌ | Invalid response, try a value between **1** and **%d** or **cancel**", n)
}

// TimedOutText is sent once when a selection expires.
func TimedOutText() string { return timedOutText }

// FetchErrorText is sent when the resolver fails.
func FetchErrorText() string { return fetchErrorText }
