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
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
)

// ColorResults is the accent of result listings.
const ColorResults = 0xFF9300

var indexEmojis = []string{"0️⃣", "1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// IndexEmoji returns the keycap for i, or the bare number past ten.
func IndexEmoji(i int) string {
	if i >= 0 && i < len(indexEmojis) {
		return indexEmojis[i]
	}
	return fmt.Sprintf("%d.", i)
}

// InstructionLine tells the requester how to answer for n candidates.
func InstructionLine(n int) string {
	return fmt.Sprintf("Reply with **1** to **%d** or **cancel** ⬇️", n)
}

// Line renders one candidate: keycap, badge, title and short meta.
func Line(c types.Candidate) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(IndexEmoji(c.DisplayIndex))
	b.WriteString("** ")
	if c.Badge != "" {
		b.WriteString(c.Badge)
		b.WriteByte(' ')
	}
	b.WriteString(c.Title)
	if c.ShortMeta != "" {
		b.WriteString(" | ")
		b.WriteString(c.ShortMeta)
	}
	return b.String()
}

// RenderResults builds the numbered listing message. candidates must not be empty.
func RenderResults(query string, candidates []types.Candidate, author *discordgo.MessageEmbedAuthor, color int) *discordgo.MessageSend {
	if color == 0 {
		color = ColorResults
	}
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, Line(c))
	}
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("Search results for `%s`", query),
		Embeds: []*discordgo.MessageEmbed{{
			Author:      author,
			Color:       color,
			Description: strings.Join(lines, "\n") + "\n\n" + InstructionLine(len(candidates)),
		}},
	}
}

// Numbered copies candidates, keeps at most limit and assigns display indexes 1..n.
func Numbered(candidates []types.Candidate, limit int) []types.Candidate {
	if limit <= 0 || limit > types.MaxCandidates {
		limit = types.MaxCandidates
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		c.DisplayIndex = i + 1
		out[i] = c
	}
	return out
}
