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

// Package selection runs the search, select and resolve exchange: a numbered
// list of candidates is posted, the requester answers with a number or
// "cancel" within a fixed window, and the chosen candidate is resolved into
// a detail message.
package selection

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
)

// Chat is the part of *discordgo.Session a selection needs.
type Chat interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	AddHandler(handler interface{}) func()
}

// Catalog produces ranked candidates for a query.
type Catalog interface {
	Search(ctx context.Context, q types.SearchQuery) ([]types.Candidate, error)
}

// Resolver expands a chosen candidate into the final message.
type Resolver interface {
	Resolve(ctx context.Context, c types.Candidate) (*discordgo.MessageSend, error)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(ctx context.Context, q types.SearchQuery) ([]types.Candidate, error)

func (f CatalogFunc) Search(ctx context.Context, q types.SearchQuery) ([]types.Candidate, error) {
	return f(ctx, q)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, c types.Candidate) (*discordgo.MessageSend, error)

func (f ResolverFunc) Resolve(ctx context.Context, c types.Candidate) (*discordgo.MessageSend, error) {
	return f(ctx, c)
}
