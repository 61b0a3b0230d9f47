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
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResultsListsEveryCandidate(t *testing.T) {
	candidates := Numbered([]types.Candidate{
		{Title: "Naruto", Badge: "`TV-PG`", ShortMeta: "**Finished Airing**"},
		{Title: "Naruto: Shippuuden", Badge: "`TV-PG`", ShortMeta: "**Finished Airing**"},
		{Title: "Boruto", Badge: "`TV-PG`", ShortMeta: "**Currently Airing**"},
	}, 5)

	msg := RenderResults("Naruto", candidates, &discordgo.MessageEmbedAuthor{Name: "kirito"}, 0)

	assert.Equal(t, "Search results for `Naruto`", msg.Content)
	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, ColorResults, embed.Color)
	assert.Equal(t, "kirito", embed.Author.Name)

	parts := strings.SplitN(embed.Description, "\n\n", 2)
	require.Len(t, parts, 2)
	lines := strings.Split(parts[0], "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "**1️⃣** `TV-PG` Naruto | **Finished Airing**", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "**2️⃣** "))
	assert.True(t, strings.HasPrefix(lines[2], "**3️⃣** "))
	assert.NotContains(t, embed.Description, "4️⃣")
	assert.Equal(t, "Reply with **1** to **3** or **cancel** ⬇️", parts[1])
}

func TestLineWithoutBadgeOrMeta(t *testing.T) {
	assert.Equal(t, "**🔟** Monkey D. Luffy", Line(types.Candidate{DisplayIndex: 10, Title: "Monkey D. Luffy"}))
	assert.Equal(t, "11.", IndexEmoji(11))
}

func TestNumberedCapsAndReindexes(t *testing.T) {
	in := make([]types.Candidate, 12)
	for i := range in {
		in[i] = types.Candidate{DisplayIndex: 99, Title: string(rune('a' + i))}
	}

	out := Numbered(in, 5)
	require.Len(t, out, 5)
	for i, c := range out {
		assert.Equal(t, i+1, c.DisplayIndex)
	}
	assert.Equal(t, 99, in[0].DisplayIndex, "input is not modified")
	assert.Len(t, Numbered(in, 0), types.MaxCandidates)
}
