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
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/music"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// catalogResolver re-fetches the chosen entry and renders its card.
func (b *Bot) catalogResolver(category types.Category, requester *discordgo.User) selection.Resolver {
	return selection.ResolverFunc(func(ctx context.Context, c types.Candidate) (*discordgo.MessageSend, error) {
		entry, err := b.catalog.Details(ctx, c.Ref)
		if err != nil {
			return nil, err
		}
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{Card(category, entry, requester, b.cfg.Catalog.WebURL)}}, nil
	})
}

func (b *Bot) startCatalogSearch(i *discordgo.InteractionCreate, category types.Category, text string) {
	requester := interactionUser(i)
	channelID := channelIDFromInteraction(i)
	flow := &selection.Flow{
		Chat:      b.session,
		Manager:   b.selections,
		Catalog:   b.catalog,
		Resolver:  b.catalogResolver(category, requester),
		Window:    b.cfg.Selection.SearchWindow,
		NoticeTTL: b.cfg.Selection.NoticeTTL,
		Color:     selection.ColorResults,
	}
	inv := selection.Invocation{
		Query:     types.NewSearchQuery(text, category, b.cfg.Selection.SearchLimit),
		Requester: requester,
		ChannelID: channelID,
	}
	b.spawn("catalog search", func(ctx context.Context) { b.runFlow(ctx, flow, inv) })
}

func (b *Bot) startMusicSearch(i *discordgo.InteractionCreate, text string) {
	flow := &selection.Flow{
		Chat:      b.session,
		Manager:   b.selections,
		Catalog:   b.tracks,
		Resolver:  &music.LinkResolver{Query: text, Spotify: b.spotify, Apple: b.apple},
		Window:    b.cfg.Selection.TrackWindow,
		NoticeTTL: b.cfg.Selection.NoticeTTL,
		Color:     selection.ColorResults,
	}
	inv := selection.Invocation{
		Query:     types.NewSearchQuery(text, types.CategoryShow, music.MaxTracks),
		Requester: interactionUser(i),
		ChannelID: channelIDFromInteraction(i),
	}
	b.spawn("music search", func(ctx context.Context) { b.runFlow(ctx, flow, inv) })
}

func (b *Bot) runFlow(ctx context.Context, flow *selection.Flow, inv selection.Invocation) {
	out, err := flow.Run(ctx, inv)
	switch {
	case err == nil:
		utils.DebugLog("Selection for %q ended: %s", inv.Query.Text, out.State)
	case errors.Is(err, selection.ErrNotFound), errors.Is(err, selection.ErrTimedOut):
		utils.DebugLog("Selection for %q: %v", inv.Query.Text, err)
	default:
		utils.WarnLog("Selection for %q failed: %v", inv.Query.Text, err)
	}
}

// startFind sends the card of the best matching show without a selection.
func (b *Bot) startFind(i *discordgo.InteractionCreate, title string) {
	requester := interactionUser(i)
	channelID := channelIDFromInteraction(i)
	b.spawn("find", func(ctx context.Context) {
		q := types.NewSearchQuery(title, types.CategoryShow, 1)
		entries, err := b.catalog.Lookup(ctx, q)
		if err != nil || len(entries) == 0 {
			if err != nil {
				utils.WarnLog("Find %q failed: %v", title, err)
			}
			b.sendText(channelID, selection.NotFoundText(q.Text))
			return
		}
		card := Card(types.CategoryShow, entries[0], requester, b.cfg.Catalog.WebURL)
		if _, err := b.session.ChannelMessageSendEmbed(channelID, card); err != nil {
			utils.ErrorLog("Discord: failed to send card: %v", err)
		}
	})
}
