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

package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/catalog"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldValue(t *testing.T, e *discordgo.MessageEmbed, name string) string {
	t.Helper()
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("field %q not found", name)
	return ""
}

func TestShowCard(t *testing.T) {
	entry := &catalog.Entry{Attributes: catalog.Attributes{
		Slug:         "naruto",
		Title:        "Naruto",
		Synopsis:     "A ninja.",
		Copyright:    "© Studio Pierrot",
		Poster:       &catalog.Image{URL: "https://img/poster.jpg", BackgroundColor: "#102030"},
		Banner:       &catalog.Image{URL: "https://img/banner.jpg"},
		Status:       "Finished Airing",
		TVRating:     "TV-14",
		AirSeason:    "Fall",
		AirDay:       "Wednesday",
		AirTime:      "10:30",
		Genres:       []string{"Action", "Adventure"},
		StartedAt:    1696118400,
		EpisodeCount: 220,
		Stats:        &catalog.Stats{RatingAverage: 4.5, RatingCount: 1234},
	}}
	user := &discordgo.User{ID: "1", Username: "kiri"}

	card := Card(types.CategoryShow, entry, user, "https://kurozora.app/")
	assert.Equal(t, "📺 Naruto", card.Title)
	assert.Equal(t, "https://kurozora.app/anime/naruto", card.URL)
	assert.Equal(t, 0x102030, card.Color)
	assert.Equal(t, "kiri", card.Author.Name)
	require.NotNil(t, card.Image)
	assert.Equal(t, "https://img/banner.jpg", card.Image.URL)
	assert.Equal(t, "© Studio Pierrot", card.Footer.Text)

	assert.Equal(t, "TV-14", fieldValue(t, card, "🔣 TV Rating"))
	assert.Equal(t, "Fall", fieldValue(t, card, "🍁 Season"))
	assert.Equal(t, "N/A", fieldValue(t, card, "📺 Type"))
	assert.Equal(t, "Action, Adventure", fieldValue(t, card, "🎭 Genres"))
	assert.Equal(t, "N/A", fieldValue(t, card, "🎡 Themes"))
	assert.Equal(t, "Wednesday at 10:30UTC", fieldValue(t, card, "📡 Broadcast"))
	assert.Equal(t, "🚀 Oct 1, 2023", fieldValue(t, card, "📆 Aired"))
	assert.Equal(t, "220", fieldValue(t, card, "🎞 Episodes"))
	assert.Equal(t, "N/A", fieldValue(t, card, "🧂 Seasons"))
	assert.Equal(t, "**4.5**/5.0 with **1.2K** Ratings", fieldValue(t, card, "⭐️ Rating"))
}

func TestLiteratureAndGameCards(t *testing.T) {
	entry := &catalog.Entry{Attributes: catalog.Attributes{Slug: "berserk", Title: "Berserk", VolumeCount: 41}}

	lit := Card(types.CategoryLiterature, entry, nil, "https://kurozora.app")
	assert.Equal(t, "📙 Berserk", lit.Title)
	assert.Equal(t, "https://kurozora.app/manga/berserk", lit.URL)
	assert.Equal(t, selection.ColorResults, lit.Color)
	assert.Nil(t, lit.Author)
	assert.Equal(t, "41", fieldValue(t, lit, "📚 Volumes"))
	assert.Equal(t, "N/A", fieldValue(t, lit, "🔣 Age Rating"))

	game := Card(types.CategoryGame, entry, nil, "https://kurozora.app")
	assert.Equal(t, "🕹️ Berserk", game.Title)
	assert.Equal(t, "https://kurozora.app/games/berserk", game.URL)
	assert.Equal(t, "N/A", fieldValue(t, game, "🎮 Editions"))
}

func TestCharacterCard(t *testing.T) {
	entry := &catalog.Entry{Attributes: catalog.Attributes{
		Slug:             "naruto-uzumaki",
		Name:             "Naruto Uzumaki",
		Status:           "Alive",
		AstrologicalSign: "♎ Libra",
		Bust:             "80",
		Hip:              "82",
		Height:           "166 cm",
		Profile:          &catalog.Image{URL: "https://img/profile.jpg", BackgroundColor: "nope"},
	}}

	card := Card(types.CategoryCharacter, entry, nil, "https://kurozora.app")
	assert.Equal(t, "👤 Naruto Uzumaki", card.Title)
	assert.Equal(t, "https://kurozora.app/characters/naruto-uzumaki", card.URL)
	assert.Equal(t, selection.ColorResults, card.Color)
	assert.Equal(t, "https://img/profile.jpg", card.Thumbnail.URL)
	assert.Equal(t, "Alive", fieldValue(t, card, "☯️ Status"))
	assert.Equal(t, "Libra", fieldValue(t, card, "♎ Astrological Sign"))
	assert.Equal(t, "80/82", fieldValue(t, card, "📐 B/W/H"))
	assert.Equal(t, "166 cm", fieldValue(t, card, "📏 Height"))
	assert.Equal(t, "N/A", fieldValue(t, card, "🌟 Debut"))
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1K"},
		{1234, "1.2K"},
		{1500000, "1.5M"},
		{999950, "1M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, abbreviate(tt.in), "abbreviate(%d)", tt.in)
	}
}

func TestSmallHelpers(t *testing.T) {
	assert.Equal(t, 0xFF9300, parseColor("#FF9300", 0))
	assert.Equal(t, 7, parseColor("bad", 7))
	assert.Equal(t, "❄️", seasonEmoji("Winter"))
	assert.Equal(t, "🍃", seasonEmoji("Spring"))
	assert.Equal(t, "", statusEmoji("Sleeping"))

	a := &catalog.Attributes{PublicationTime: "09:00"}
	assert.Equal(t, "at 09:00UTC", broadcast(a))
	a.EndedAt = 1696118400
	assert.Equal(t, "\n╰╍╍╍╍╍╍╍╍╮\nOct 1, 2023 🏁", runningDates(a))
}
