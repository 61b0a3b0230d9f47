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

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

var gifTypes = []string{
	"angry", "bite", "bored", "bread", "chocolate", "cookie", "cuddle", "dance", "drunk",
	"happy", "kill", "laugh", "lick", "lonely", "nomm", "pat", "poke", "pregnant", "punch",
	"run", "slap", "sleep", "spit", "steal", "tickle",
}

// command definitions
func (b *Bot) commandSpecs() []*discordgo.ApplicationCommand {
	typeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Anime", Value: "show"},
		{Name: "Manga", Value: "literature"},
		{Name: "Game", Value: "game"},
		{Name: "Character", Value: "character"},
	}
	gifChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(gifTypes))
	for _, g := range gifTypes {
		gifChoices = append(gifChoices, &discordgo.ApplicationCommandOptionChoice{Name: g, Value: g})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "search",
			Description: "Search the Kurozora catalog",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "What to search for", Required: true, Choices: typeChoices},
				{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Title or name to search", Required: true},
			},
		},
		{
			Name:        "find",
			Description: "Find an anime on Kurozora!",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "The title of the anime", Required: true},
			},
		},
		{
			Name:        "music",
			Description: "Music commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search a song and get its links",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Song title or artist", Required: true},
					},
				},
			},
		},
		{
			Name:        "poll",
			Description: "Create or close a poll",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a poll",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Poll title", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "options", Description: "Comma-separated options (2 to 25)", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Poll description, \\n for new lines"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "public", Description: "Show live results"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close a poll",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Poll ID", Required: true},
					},
				},
			},
		},
		{Name: "flip", Description: "Flips a coin."},
		{Name: "cat", Description: "Cute cat pictures!"},
		{Name: "dog", Description: "Cute dog pictures!"},
		{Name: "fox", Description: "Cute fox pictures!"},
		{
			Name:        "gif",
			Description: "Send an anime gif",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Gif type", Required: true, Choices: gifChoices},
			},
		},
		{Name: menuSearchAnime, Type: discordgo.MessageApplicationCommand},
		{Name: menuSearchManga, Type: discordgo.MessageApplicationCommand},
		{Name: menuSearchCharacter, Type: discordgo.MessageApplicationCommand},
	}
}

const (
	menuSearchAnime     = "Search Anime"
	menuSearchManga     = "Search Manga"
	menuSearchCharacter = "Search Character"
)

func (b *Bot) appID() string {
	if b.cfg.Discord.AppID != "" {
		return b.cfg.Discord.AppID
	}
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// registerSlashCommands registers commands globally or in a dev guild.
func (b *Bot) registerSlashCommands() error {
	appID := b.appID()
	if appID == "" {
		return fmt.Errorf("session user not ready")
	}
	guildID := b.devGuildID
	// Single guild: scope commands to it so they show up at once.
	if guildID == "" && b.session.State != nil && len(b.session.State.Guilds) == 1 {
		guildID = b.session.State.Guilds[0].ID
		b.devGuildID = guildID
		utils.InfoLog("Slash commands: auto-using guild %s for development registration", guildID)
	}
	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, b.commandSpecs())
	if err != nil {
		return fmt.Errorf("bulk overwrite: %w", err)
	}
	b.registeredCommands = cmds
	scope := "global"
	if guildID != "" {
		scope = "guild:" + guildID
	}
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	utils.InfoLog("Slash commands registered (%s): %v", scope, names)
	return nil
}

// unregisterSlashCommands removes commands from the dev guild. Global deletions are slow, so skip if global.
func (b *Bot) unregisterSlashCommands() error {
	if len(b.registeredCommands) == 0 || b.devGuildID == "" {
		return nil
	}
	appID := b.appID()
	for _, cmd := range b.registeredCommands {
		if err := b.session.ApplicationCommandDelete(appID, b.devGuildID, cmd.ID); err != nil {
			utils.WarnLog("Failed to delete command %s: %v", cmd.Name, err)
		}
	}
	b.registeredCommands = nil
	return nil
}

// handleApplicationCommand routes slash commands and context menus.
func (b *Bot) handleApplicationCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	utils.DebugLog("Discord: /%s from %s in %s", data.Name, interactionUserID(i), channelIDFromInteraction(i))

	switch data.Name {
	case "search":
		category, err := types.ParseCategory(optString(i, "type"))
		if err != nil {
			respondEphemeral(s, i, "❌ | Unknown search type.")
			return
		}
		respondEphemeral(s, i, "Searching…")
		b.startCatalogSearch(i, category, optString(i, "query"))

	case menuSearchAnime, menuSearchManga, menuSearchCharacter:
		category := map[string]types.Category{
			menuSearchAnime:     types.CategoryShow,
			menuSearchManga:     types.CategoryLiterature,
			menuSearchCharacter: types.CategoryCharacter,
		}[data.Name]
		query := targetMessageContent(i)
		if query == "" {
			respondEphemeral(s, i, "❌ | That message has no text to search for.")
			return
		}
		respondEphemeral(s, i, "Searching…")
		b.startCatalogSearch(i, category, query)

	case "find":
		respondEphemeral(s, i, "Searching…")
		b.startFind(i, optString(i, "title"))

	case "music":
		if subcommand(i) != "search" {
			return
		}
		respondEphemeral(s, i, "Searching…")
		b.startMusicSearch(i, optString(i, "query"))

	case "poll":
		switch subcommand(i) {
		case "create":
			b.handlePollCreate(s, i)
		case "close":
			b.handlePollCloseCommand(s, i)
		}

	case "flip":
		respond(s, i, flipCoin())

	case "cat", "dog", "fox", "gif":
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}); err != nil {
			utils.WarnLog("Discord: failed to defer /%s: %v", data.Name, err)
			return
		}
		b.startRandomImage(i, data.Name, optString(i, "type"))
	}
}

// leafOptions returns the options of the invoked subcommand, or the top-level options.
func leafOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand || opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		return opts[0].Options
	}
	return opts
}

func subcommand(i *discordgo.InteractionCreate) string {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return opts[0].Name
	}
	return ""
}

// Helpers to extract options
func optString(i *discordgo.InteractionCreate, name string) string {
	for _, o := range leafOptions(i) {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

func optBool(i *discordgo.InteractionCreate, name string) bool {
	for _, o := range leafOptions(i) {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionBoolean {
			return o.BoolValue()
		}
	}
	return false
}

func targetMessageContent(i *discordgo.InteractionCreate) string {
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		return ""
	}
	if m, ok := data.Resolved.Messages[data.TargetID]; ok && m != nil {
		return m.Content
	}
	return ""
}

func channelIDFromInteraction(i *discordgo.InteractionCreate) string {
	if i.ChannelID != "" {
		return i.ChannelID
	}
	if i.Message != nil {
		return i.Message.ChannelID
	}
	return ""
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to respond to interaction: %v", err)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral, Content: content},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to respond to interaction: %v", err)
	}
}
