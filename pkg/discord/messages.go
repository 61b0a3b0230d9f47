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
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// Common embed colors
const (
	colorSuccess = 0x28A745 // green
	colorWarn    = 0xFFC107 // amber
	colorError   = 0xDC3545 // red
)

// sendEmbed is a small helper to send a styled embed.
func (b *Bot) sendEmbed(channelID string, color int, title, description string) error {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	_, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (b *Bot) fail(channelID, title, desc string) {
	if err := b.sendEmbed(channelID, colorError, title, desc); err != nil {
		utils.ErrorLog("Discord: failed to send error embed: %v", err)
	}
}

// sendText posts plain content without pinging anyone.
func (b *Bot) sendText(channelID, content string) {
	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		utils.ErrorLog("Discord: failed to send message in %s: %v", channelID, err)
	}
}

// ephemeralEmbed answers an interaction privately with a styled embed.
func ephemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, color int, title, desc string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{{Title: title, Description: desc, Color: color}},
		},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to respond to interaction: %v", err)
	}
}
