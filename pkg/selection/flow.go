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
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// Flow wires a catalog and a resolver to the chat through a manager.
type Flow struct {
	Chat      Chat
	Manager   *Manager
	Catalog   Catalog
	Resolver  Resolver
	Window    time.Duration
	NoticeTTL time.Duration
	Color     int
}

// Invocation is one user's request to search.
type Invocation struct {
	Query     types.SearchQuery
	Requester *discordgo.User
	ChannelID string
}

// Run searches, posts the listing, waits for the requester's choice and
// sends the resolved detail. Every failure is reported in the channel; the
// returned error is for logging only.
func (f *Flow) Run(ctx context.Context, inv Invocation) (Outcome, error) {
	if inv.Requester == nil {
		return Outcome{}, fmt.Errorf("invocation without requester")
	}

	found, err := f.Catalog.Search(ctx, inv.Query)
	if err != nil || len(found) == 0 {
		f.send(inv.ChannelID, &discordgo.MessageSend{Content: NotFoundText(inv.Query.Text)})
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %q: %v", ErrNotFound, inv.Query.Text, err)
		}
		return Outcome{}, fmt.Errorf("%w: %q", ErrNotFound, inv.Query.Text)
	}
	candidates := Numbered(found, inv.Query.Limit)

	// listen before posting so a fast reply is not missed
	sess := f.Manager.Open(ctx, Request{
		RequesterID: inv.Requester.ID,
		ChannelID:   inv.ChannelID,
		Candidates:  candidates,
		Window:      f.Window,
		NoticeTTL:   f.NoticeTTL,
	})

	author := &discordgo.MessageEmbedAuthor{Name: inv.Requester.Username, IconURL: inv.Requester.AvatarURL("")}
	listing, err := f.Chat.ChannelMessageSendComplex(inv.ChannelID, RenderResults(inv.Query.Text, candidates, author, f.Color))
	if err != nil {
		sess.cancel()
		sess.Wait()
		return Outcome{}, fmt.Errorf("send results: %w", err)
	}
	if !sess.Attach(listing.ID) && sess.Wait().State == Cancelled {
		// superseded before the listing went out
		if err := f.Chat.ChannelMessageDelete(inv.ChannelID, listing.ID); err != nil {
			utils.WarnLog("Selection: failed to delete message %s in %s: %v", listing.ID, inv.ChannelID, err)
		}
	}
	out := sess.Wait()

	switch out.State {
	case TimedOut:
		return out, ErrTimedOut
	case Resolved:
	default:
		return out, nil
	}

	detail, err := f.Resolver.Resolve(ctx, out.Selected)
	if err != nil || detail == nil {
		f.send(inv.ChannelID, &discordgo.MessageSend{Content: FetchErrorText()})
		if err == nil {
			err = fmt.Errorf("empty detail")
		}
		return out, fmt.Errorf("%w: %s: %v", ErrFetch, out.Selected.Ref, err)
	}
	if _, err := f.Chat.ChannelMessageSendComplex(inv.ChannelID, detail); err != nil {
		return out, fmt.Errorf("send detail: %w", err)
	}
	return out, nil
}

func (f *Flow) send(channelID string, msg *discordgo.MessageSend) {
	if _, err := f.Chat.ChannelMessageSendComplex(channelID, msg); err != nil {
		utils.WarnLog("Selection: failed to send message in %s: %v", channelID, err)
	}
}
