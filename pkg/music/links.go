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
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// LinkResolver answers a track choice with its YouTube link plus the
// Spotify and Apple Music matches for the original query.
type LinkResolver struct {
	Query   string
	Spotify *SpotifyClient
	Apple   *AppleMusicClient
}

// Resolve implements selection.Resolver.
func (r *LinkResolver) Resolve(ctx context.Context, c types.Candidate) (*discordgo.MessageSend, error) {
	if c.Ref == "" {
		return nil, errors.New("track without video id")
	}
	lines := []string{"📺 | " + Track{VideoID: c.Ref}.URL()}

	if r.Apple != nil {
		if link, err := r.Apple.FirstSongURL(ctx, r.Query); err != nil {
			utils.WarnLog("Music: apple music lookup for %q failed: %v", r.Query, err)
		} else if link != "" {
			lines = append(lines, "🍎 | "+strings.ReplaceAll(link, `\`, ""))
		}
	}
	if r.Spotify != nil {
		if link, err := r.Spotify.FirstTrackURL(ctx, r.Query); err != nil {
			utils.WarnLog("Music: spotify lookup for %q failed: %v", r.Query, err)
		} else if link != "" {
			lines = append(lines, "🟢 | "+strings.ReplaceAll(link, `\`, ""))
		}
	}
	return &discordgo.MessageSend{Content: strings.Join(lines, "\n")}, nil
}
