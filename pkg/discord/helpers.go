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
	"strings"

	"github.com/bwmarrin/discordgo"
)

// interactionUser returns the invoking user in guilds and DMs.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// interactionUserID extracts user ID from an interaction.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if u := interactionUser(i); u != nil {
		return u.ID
	}
	return ""
}

// isSameUser verifies the interaction comes from the expected user.
func isSameUser(expected string, i *discordgo.InteractionCreate) bool {
	return expected != "" && interactionUserID(i) == expected
}

// pollManagerRole grants poll rights without Manage Guild.
const pollManagerRole = "Poll Manager"

// canManagePolls reports whether a member may create or close any poll.
func canManagePolls(permissions int64, memberRoles []string, guildRoles []*discordgo.Role) bool {
	if permissions&(discordgo.PermissionManageServer|discordgo.PermissionAdministrator) != 0 {
		return true
	}
	held := make(map[string]bool, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = true
	}
	for _, r := range guildRoles {
		if r != nil && held[r.ID] && r.Name == pollManagerRole {
			return true
		}
	}
	return false
}

// renderBar draws a ten cell vote bar with count and percentage.
func renderBar(votes, total int) string {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(votes) / float64(total)
	}
	filled := int(math.Round(pct / 10))
	if filled > 10 {
		filled = 10
	}
	return fmt.Sprintf("[%s%s] (%d) %.2f%%", strings.Repeat("▮", filled), strings.Repeat("▯", 10-filled), votes, pct)
}
