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
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// imageSource is a random image API and the JSON path to the image URL.
type imageSource struct {
	url   string
	path  []string
	title string
}

var imageSources = map[string]imageSource{
	"cat": {url: "https://api.thecatapi.com/v1/images/search", path: []string{"[0]", "url"}, title: "🐱 Meow!"},
	"dog": {url: "https://random.dog/woof.json", path: []string{"url"}, title: "🐶 Woof!"},
	"fox": {url: "https://randomfox.ca/floof/", path: []string{"image"}, title: "🦊 Yip!"},
}

func flipCoin() string {
	if rand.Intn(2) == 0 {
		return "Heads."
	}
	return "Tails."
}

// fetchImageURL GETs endpoint and extracts the string at path.
func fetchImageURL(ctx context.Context, client *http.Client, endpoint string, path ...string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", utils.GetUserAgent())
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", endpoint, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	link, err := jsonparser.GetString(body, path...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", endpoint, err)
	}
	if link == "" {
		return "", fmt.Errorf("%s: empty image url", endpoint)
	}
	return link, nil
}

const imageErrorText = "❌ | Could not fetch an image, try again later."

func (b *Bot) imageSourceFor(command, gifType string) (imageSource, bool) {
	if command != "gif" {
		src, ok := imageSources[command]
		return src, ok
	}
	if gifType == "" {
		return imageSource{}, false
	}
	return imageSource{
		url:  strings.TrimRight(b.cfg.Catalog.KisaraURL, "/") + "/api/endpoint/" + gifType,
		path: []string{"url"},
	}, true
}

// imageEdit builds the final content of a deferred random image response.
// Every path yields an edit so the response never stays pending.
func (b *Bot) imageEdit(ctx context.Context, command, gifType string) *discordgo.WebhookEdit {
	src, ok := b.imageSourceFor(command, gifType)
	if !ok {
		utils.WarnLog("Random image: no source for /%s (type %q)", command, gifType)
		msg := fmt.Sprintf("❌ | Unknown image type for /%s.", command)
		return &discordgo.WebhookEdit{Content: &msg}
	}
	link, err := fetchImageURL(ctx, b.client, src.url, src.path...)
	if err != nil {
		utils.WarnLog("Random image for /%s failed: %v", command, err)
		msg := imageErrorText
		return &discordgo.WebhookEdit{Content: &msg}
	}
	embeds := []*discordgo.MessageEmbed{{
		Title: src.title,
		Color: selection.ColorResults,
		Image: &discordgo.MessageEmbedImage{URL: link},
	}}
	return &discordgo.WebhookEdit{Embeds: &embeds}
}

// startRandomImage fills a deferred response with an image embed.
func (b *Bot) startRandomImage(i *discordgo.InteractionCreate, command, gifType string) {
	b.spawn(command, func(ctx context.Context) {
		edit := b.imageEdit(ctx, command, gifType)
		if _, err := b.session.InteractionResponseEdit(i.Interaction, edit); err != nil {
			utils.WarnLog("Discord: failed to edit /%s response: %v", command, err)
		}
	})
}
