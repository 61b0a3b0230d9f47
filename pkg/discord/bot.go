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
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/catalog"
	"github.com/kurozora/kurozora-bot/pkg/config"
	"github.com/kurozora/kurozora-bot/pkg/database"
	"github.com/kurozora/kurozora-bot/pkg/linkclean"
	"github.com/kurozora/kurozora-bot/pkg/music"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// Bot is the Discord front end: slash commands, selections, polls and the
// link cleaner.
type Bot struct {
	session *discordgo.Session
	cfg     *config.BotConfig

	selections *selection.Manager
	catalog    *catalog.Client
	tracks     *music.Searcher
	spotify    *music.SpotifyClient
	apple      *music.AppleMusicClient
	polls      *database.DBManager
	cleaner    *linkclean.Cleaner
	client     *http.Client

	devGuildID         string
	registeredCommands []*discordgo.ApplicationCommand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	start  time.Time
}

// NewBot creates the bot. polls may be nil, which disables /poll.
func NewBot(cfg *config.BotConfig, polls *database.DBManager) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token.PlainText())
	if err != nil {
		return nil, err
	}

	client := utils.NewHTTPClient(15 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		session:    dg,
		cfg:        cfg,
		selections: selection.NewManager(dg),
		catalog:    catalog.NewClient(cfg.Catalog.APIURL, cfg.Catalog.RPS, client),
		tracks:     music.NewSearcher(music.YouTubeSource(client), music.YouTubeMusicSource()),
		spotify:    music.NewSpotifyClient(cfg.Music.SpotifyClientID, cfg.Music.SpotifyClientSecret.PlainText(), client),
		apple:      music.NewAppleMusicClient(cfg.Music.MusicKitToken.PlainText(), client),
		polls:      polls,
		client:     client,
		devGuildID: cfg.Discord.DevGuildID,
		ctx:        ctx,
		cancel:     cancel,
		start:      time.Now(),
	}
	if cfg.LinkCleaner {
		bot.cleaner = linkclean.New(client)
	}
	if bot.spotify == nil {
		utils.InfoLog("Spotify credentials not set, Spotify links disabled")
	}
	if bot.apple == nil {
		utils.InfoLog("MusicKit token not set, Apple Music links disabled")
	}

	dg.AddHandler(bot.handleInteractionCreate)
	dg.AddHandler(bot.handleApplicationCommand)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		utils.InfoLog("Discord ready: %s (%s) in %d guild(s)", r.User.Username, r.User.ID, len(r.Guilds))
	})

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	return bot, nil
}

// Start opens the gateway and registers slash commands.
func (b *Bot) Start() error {
	utils.InfoLog("Starting Discord bot with intents: Guilds, GuildMessages, DirectMessages, MessageContent")
	if err := b.session.Open(); err != nil {
		return err
	}
	if err := b.registerSlashCommands(); err != nil {
		utils.ErrorLog("Failed to register slash commands: %v", err)
	}
	if b.devGuildID == "" {
		utils.WarnLog("Slash commands registered globally; this can take up to 1 hour to appear. Set DEV_GUILD_ID to register instantly in a guild during development.")
	}
	return nil
}

// Stop cancels running selections, waits for them and closes the gateway.
func (b *Bot) Stop() {
	utils.InfoLog("Stopping Discord bot")
	b.cancel()
	b.selections.Close()
	b.wg.Wait()
	if err := b.unregisterSlashCommands(); err != nil {
		utils.WarnLog("Failed to unregister slash commands: %v", err)
	}
	if err := b.session.Close(); err != nil {
		utils.WarnLog("Failed to close Discord session: %v", err)
	}
}

// Selections exposes the selection manager for status reporting.
func (b *Bot) Selections() *selection.Manager { return b.selections }

// Uptime is the time since NewBot.
func (b *Bot) Uptime() time.Duration { return time.Since(b.start) }

// spawn runs fn on a tracked goroutine bound to the bot lifetime.
func (b *Bot) spawn(name string, fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				utils.ErrorLog("Discord: %s panicked: %v", name, r)
			}
		}()
		fn(b.ctx)
	}()
}
