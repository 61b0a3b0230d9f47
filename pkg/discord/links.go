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
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/linkclean"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// handleMessageCreate replies with cleaned versions of tracked links.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.cleaner == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if len(linkclean.Extract(m.Content)) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	cleaned := b.cleaner.CleanMessage(ctx, m.Content)
	if len(cleaned) == 0 {
		return
	}
	utils.DebugLog("Link cleaner: cleaned %d link(s) from %s", len(cleaned), m.Author.ID)
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         linkclean.Reply(cleaned),
		Reference:       m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to send cleaned links: %v", err)
	}
}
