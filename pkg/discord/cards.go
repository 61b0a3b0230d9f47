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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/catalog"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

const blank = "\u200b"

var spacer = &discordgo.MessageEmbedField{Name: blank, Value: blank, Inline: true}

// webPath maps a category to its section on the website.
func webPath(c types.Category) string {
	switch c {
	case types.CategoryLiterature:
		return "manga"
	case types.CategoryGame:
		return "games"
	case types.CategoryCharacter:
		return "characters"
	default:
		return "anime"
	}
}

// Card builds the detail embed for an entry of the given category.
func Card(category types.Category, e *catalog.Entry, requester *discordgo.User, webURL string) *discordgo.MessageEmbed {
	a := &e.Attributes
	embed := &discordgo.MessageEmbed{
		URL:         fmt.Sprintf("%s/%s/%s", strings.TrimRight(webURL, "/"), webPath(category), a.Slug),
		Description: a.Synopsis,
		Color:       selection.ColorResults,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if requester != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: requester.Username, IconURL: requester.AvatarURL("1024")}
	}

	artwork := a.Poster
	if category == types.CategoryCharacter {
		artwork = a.Profile
	}
	if artwork != nil && artwork.URL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: artwork.URL}
		embed.Color = parseColor(artwork.BackgroundColor, selection.ColorResults)
	}

	switch category {
	case types.CategoryCharacter:
		embed.Title = "👤 " + a.Name
		embed.Fields = characterFields(a)
		return embed
	case types.CategoryLiterature:
		embed.Title = "📙 " + a.Title
	case types.CategoryGame:
		embed.Title = "🕹️ " + a.Title
	default:
		embed.Title = "📺 " + a.Title
	}
	embed.Fields = mediaFields(category, a)

	if a.Banner != nil && a.Banner.URL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: a.Banner.URL}
	}
	if a.Copyright != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: a.Copyright}
	}
	return embed
}

func mediaFields(category types.Category, a *catalog.Attributes) []*discordgo.MessageEmbedField {
	ratingName := "🔣 Age Rating"
	runName, ranName := "📡 Publication", "📆 Published"
	if category == types.CategoryShow {
		ratingName = "🔣 TV Rating"
		runName, ranName = "📡 Broadcast", "📆 Aired"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "⏳ Status", Value: utils.OrNA(string(a.Status)), Inline: true},
		{Name: seasonEmoji(a.Season()) + " Season", Value: utils.OrNA(a.Season()), Inline: true},
		{Name: "📺 Type", Value: utils.OrNA(string(a.Type)), Inline: true},
		{Name: "🎯 Source", Value: utils.OrNA(string(a.Source)), Inline: true},
		{Name: ratingName, Value: utils.OrNA(string(a.TVRating)), Inline: true},
		spacer,
		{Name: "🎭 Genres", Value: joinOrNA(a.Genres)},
		{Name: "🎡 Themes", Value: joinOrNA(a.Themes)},
	}
	if b := broadcast(a); b != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: runName, Value: b, Inline: true})
	}
	if r := runningDates(a); r != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: ranName, Value: r, Inline: true})
	}
	fields = append(fields, spacer)

	switch category {
	case types.CategoryShow:
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "🧂 Seasons", Value: count(a.SeasonCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "🎞 Episodes", Value: count(a.EpisodeCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱ Duration", Value: utils.OrNA(a.Duration), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱ Duration Total", Value: utils.OrNA(a.DurationTotal)},
		)
	case types.CategoryLiterature:
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "📚 Volumes", Value: count(a.VolumeCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "📑 Chapters", Value: count(a.ChapterCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "📃 Pages", Value: count(a.PageCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱ Duration", Value: utils.OrNA(a.Duration), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱ Duration Total", Value: utils.OrNA(a.DurationTotal)},
		)
	case types.CategoryGame:
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "🎮 Editions", Value: count(a.EditionCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "⏱ Duration", Value: utils.OrNA(a.Duration), Inline: true},
			spacer,
		)
	}

	if r := rating(a.Stats); r != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⭐️ Rating", Value: r})
	}
	return fields
}

func characterFields(a *catalog.Attributes) []*discordgo.MessageEmbedField {
	signEmoji, sign := splitEmoji(string(a.AstrologicalSign))
	bwh := make([]string, 0, 3)
	for _, m := range []catalog.FlexString{a.Bust, a.Waist, a.Hip} {
		if m != "" {
			bwh = append(bwh, string(m))
		}
	}
	return []*discordgo.MessageEmbedField{
		{Name: "🌟 Debut", Value: utils.OrNA(string(a.Debut)), Inline: true},
		{Name: strings.TrimSpace(statusEmoji(string(a.Status)) + " Status"), Value: utils.OrNA(string(a.Status)), Inline: true},
		spacer,
		{Name: "🎂 Birthday", Value: utils.OrNA(string(a.Birthdate)), Inline: true},
		{Name: "📅 Age", Value: utils.OrNA(string(a.Age)), Inline: true},
		{Name: strings.TrimSpace(signEmoji + " Astrological Sign"), Value: utils.OrNA(sign), Inline: true},
		{Name: "📐 B/W/H", Value: utils.OrNA(strings.Join(bwh, "/")), Inline: true},
		{Name: "📏 Height", Value: utils.OrNA(string(a.Height)), Inline: true},
		{Name: "⚖️ Weight", Value: utils.OrNA(string(a.Weight)), Inline: true},
		{Name: "Blood Type", Value: utils.OrNA(string(a.BloodType)), Inline: true},
		{Name: "🍽 Favorite Food", Value: utils.OrNA(string(a.FavoriteFood)), Inline: true},
		spacer,
	}
}

func seasonEmoji(season string) string {
	switch season {
	case "Spring":
		return "🍃"
	case "Summer":
		return "☀️"
	case "Fall":
		return "🍁"
	default:
		return "❄️"
	}
}

func statusEmoji(status string) string {
	switch status {
	case "Unknown":
		return "🤷‍♂️"
	case "Alive":
		return "☯️"
	case "Deceased":
		return "🪦"
	case "Missing":
		return "🕵‍♂️"
	default:
		return ""
	}
}

func broadcast(a *catalog.Attributes) string {
	day, at := a.AirDay, a.AirTime
	if day == "" {
		day = a.PublicationDay
	}
	if at == "" {
		at = a.PublicationTime
	}
	var b strings.Builder
	if day != "" {
		b.WriteString(day + " ")
	}
	if at != "" {
		b.WriteString("at " + at + "UTC")
	}
	return strings.TrimSpace(b.String())
}

func runningDates(a *catalog.Attributes) string {
	started := a.StartedAt
	if started == 0 {
		started = a.PublishedAt
	}
	var out string
	if started != 0 {
		out = "🚀 " + formatDate(int64(started))
	}
	if a.EndedAt != 0 {
		out += "\n╰╍╍╍╍╍╍╍╍╮\n" + formatDate(int64(a.EndedAt)) + " 🏁"
	}
	return out
}

func formatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("Jan 2, 2006")
}

func rating(s *catalog.Stats) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("**%s**/5.0 with **%s** Ratings",
		strconv.FormatFloat(s.RatingAverage, 'f', -1, 64), abbreviate(int64(s.RatingCount)))
}

// abbreviate renders n in short compact notation: 950, 1.2K, 3M.
func abbreviate(n int64) string {
	units := []string{"", "K", "M", "B", "T"}
	v := float64(n)
	i := 0
	for math.Abs(v) >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	v = math.Round(v*10) / 10
	if math.Abs(v) >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + units[i]
}

func count(n catalog.FlexInt) string {
	if n == 0 {
		return "N/A"
	}
	return strconv.FormatInt(int64(n), 10)
}

func joinOrNA(items []string) string {
	return utils.OrNA(strings.Join(items, ", "))
}

// parseColor reads "#RRGGBB", falling back to def.
func parseColor(hex string, def int) int {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return def
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return def
	}
	return int(v)
}

// splitEmoji separates symbol runes from the text of s.
func splitEmoji(s string) (emoji, text string) {
	var e, t strings.Builder
	for _, r := range s {
		switch {
		case unicode.Is(unicode.So, r), r == '\ufe0f', r == '\u200d':
			e.WriteRune(r)
		default:
			t.WriteRune(r)
		}
	}
	return e.String(), strings.TrimSpace(t.String())
}
