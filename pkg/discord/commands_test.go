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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSpecs(t *testing.T) {
	var b Bot
	names := map[string]*discordgo.ApplicationCommand{}
	for _, c := range b.commandSpecs() {
		names[c.Name] = c
	}
	for _, n := range []string{"search", "find", "music", "poll", "flip", "cat", "dog", "fox", "gif", menuSearchAnime, menuSearchManga, menuSearchCharacter} {
		assert.Contains(t, names, n)
	}
	assert.Equal(t, discordgo.MessageApplicationCommand, names[menuSearchManga].Type)
	assert.Len(t, names["gif"].Options[0].Choices, len(gifTypes))
}

func TestOptionsFromSubcommand(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "poll",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name: "create",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "title", Type: discordgo.ApplicationCommandOptionString, Value: "Best color"},
					{Name: "public", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
				},
			}},
		},
	}}
	assert.Equal(t, "create", subcommand(i))
	assert.Equal(t, "Best color", optString(i, "title"))
	assert.True(t, optBool(i, "public"))
	assert.Equal(t, "", optString(i, "missing"))
}

func TestFetchImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat":
			w.Write([]byte(`[{"id":"a1","url":"https://cdn/cat.jpg","width":10}]`))
		case "/fox":
			w.Write([]byte(`{"image":"https://randomfox.ca/images/1.jpg","link":"x"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, err := fetchImageURL(context.Background(), srv.Client(), srv.URL+"/cat", "[0]", "url")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/cat.jpg", got)

	got, err = fetchImageURL(context.Background(), srv.Client(), srv.URL+"/fox", "image")
	require.NoError(t, err)
	assert.Equal(t, "https://randomfox.ca/images/1.jpg", got)

	_, err = fetchImageURL(context.Background(), srv.Client(), srv.URL+"/dog", "url")
	assert.Error(t, err)
}

func TestImageEditAlwaysCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/endpoint/hug" {
			w.Write([]byte(`{"url":"https://kisara.app/hug.gif"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	b := &Bot{cfg: &config.BotConfig{Catalog: config.CatalogConfig{KisaraURL: srv.URL + "/"}}, client: srv.Client()}
	ctx := context.Background()

	edit := b.imageEdit(ctx, "gif", "hug")
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, "https://kisara.app/hug.gif", (*edit.Embeds)[0].Image.URL)
	assert.Nil(t, edit.Content)

	edit = b.imageEdit(ctx, "gif", "")
	require.NotNil(t, edit.Content, "a missing gif type still answers")
	assert.Contains(t, *edit.Content, "Unknown image type")

	edit = b.imageEdit(ctx, "owl", "")
	require.NotNil(t, edit.Content)
	assert.Contains(t, *edit.Content, "/owl")

	edit = b.imageEdit(ctx, "gif", "slap")
	require.NotNil(t, edit.Content)
	assert.Equal(t, imageErrorText, *edit.Content)
}

func TestFlipCoin(t *testing.T) {
	for n := 0; n < 20; n++ {
		assert.Contains(t, []string{"Heads.", "Tails."}, flipCoin())
	}
}

func TestInteractionUser(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: &discordgo.Member{User: &discordgo.User{ID: "m"}}}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "u"}}}
	assert.Equal(t, "m", interactionUserID(guild))
	assert.Equal(t, "u", interactionUserID(dm))
	assert.True(t, isSameUser("u", dm))
	assert.False(t, isSameUser("", &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}
