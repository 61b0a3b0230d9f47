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
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/kurozora/kurozora-bot/pkg/database"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

const (
	pollVotePrefix  = "poll_vote:"
	pollClosePrefix = "poll_close:"
	maxPollOptions  = 25
	pollTimeout     = 10 * time.Second
)

// parsePollOptions splits comma-separated options, trimmed and deduplicated.
func parsePollOptions(raw string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	if len(out) > maxPollOptions {
		return nil, fmt.Errorf("Sorry! The poll you tried to create has more than %d items(%d) unfortunately this is a Discord limitation, please remove some options from the poll.", maxPollOptions, len(out))
	}
	if len(out) < 2 {
		return nil, errors.New("A poll needs at least two different options.")
	}
	return out, nil
}

// voteMessage is the private answer to a vote.
func voteMessage(options []string, previous, chosen int) string {
	if previous >= 0 && previous != chosen && previous < len(options) {
		return fmt.Sprintf("Your vote has changed from %q to %q.", options[previous], options[chosen])
	}
	return fmt.Sprintf("%q chosen.", options[chosen])
}

// pollEmbed renders the poll; tally adds the results columns.
func pollEmbed(p *types.Poll, tally []types.PollTally) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		Color:       selection.ColorResults,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Poll ID: " + p.ID},
	}
	if tally != nil {
		ranked := make([]types.PollTally, len(tally))
		copy(ranked, tally)
		sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Votes > ranked[b].Votes })

		total := 0
		for _, t := range ranked {
			total += t.Votes
		}
		names := make([]string, 0, len(ranked))
		bars := make([]string, 0, len(ranked))
		for _, t := range ranked {
			names = append(names, t.Option)
			bars = append(bars, renderBar(t.Votes, total))
		}
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Option", Value: strings.Join(names, "\n"), Inline: true},
			{Name: fmt.Sprintf("Results (Total Votes: %d)", total), Value: strings.Join(bars, "\n"), Inline: true},
		}
	}
	if p.Closed {
		closedBy := p.ClosedBy
		if closedBy == "" {
			closedBy = "unknown"
		}
		at := time.Now().UTC()
		if p.ClosedAt != nil {
			at = p.ClosedAt.UTC()
		}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Poll closed at %s by %s", at.Format("Jan 2, 2006 15:04 MST"), closedBy)}
	}
	return embed
}

func pollComponents(p *types.Poll) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(p.Options))
	for i, o := range p.Options {
		options = append(options, discordgo.SelectMenuOption{Label: utils.Truncate(o, 100), Value: strconv.Itoa(i)})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    pollVotePrefix + p.ID,
				Placeholder: "Select an option...",
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Close Poll", Style: discordgo.DangerButton, CustomID: pollClosePrefix + p.ID},
		}},
	}
}

// memberCanManagePolls checks Manage Guild or the Poll Manager role.
func (b *Bot) memberCanManagePolls(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.GuildID == "" {
		return false
	}
	var roles []*discordgo.Role
	if g, err := s.State.Guild(i.GuildID); err == nil && g != nil {
		roles = g.Roles
	} else if fetched, err := s.GuildRoles(i.GuildID); err == nil {
		roles = fetched
	} else {
		utils.WarnLog("Discord: failed to load roles of guild %s: %v", i.GuildID, err)
	}
	return canManagePolls(i.Member.Permissions, i.Member.Roles, roles)
}

func (b *Bot) handlePollCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.polls.IsInitialized() {
		respondEphemeral(s, i, "Polls are disabled on this bot.")
		return
	}
	if i.GuildID == "" {
		respondEphemeral(s, i, "Polls can only be created in a server.")
		return
	}
	if !b.memberCanManagePolls(s, i) {
		respondEphemeral(s, i, "Sorry you don’t have the \"Poll Manager\" role.")
		return
	}
	options, err := parsePollOptions(optString(i, "options"))
	if err != nil {
		respondEphemeral(s, i, err.Error())
		return
	}

	poll := &types.Poll{
		ID:          uuid.New().String(),
		GuildID:     i.GuildID,
		ChannelID:   channelIDFromInteraction(i),
		CreatorID:   interactionUserID(i),
		Title:       optString(i, "title"),
		Description: strings.ReplaceAll(optString(i, "description"), `\n`, "\n"),
		Public:      optBool(i, "public"),
		Options:     options,
	}

	ctx, cancel := context.WithTimeout(b.ctx, pollTimeout)
	defer cancel()
	if err := b.polls.CreatePoll(ctx, poll); err != nil {
		utils.ErrorLog("Failed to store poll: %v", err)
		respondEphemeral(s, i, "❌ | Could not create the poll, try again later.")
		return
	}

	var tally []types.PollTally
	if poll.Public {
		tally = emptyTally(poll)
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pollEmbed(poll, tally)},
			Components: pollComponents(poll),
		},
	})
	if err != nil {
		utils.ErrorLog("Discord: failed to post poll %s: %v", poll.ID, err)
		return
	}
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		utils.WarnLog("Discord: failed to fetch poll message for %s: %v", poll.ID, err)
		return
	}
	if err := b.polls.SetPollMessage(ctx, poll.ID, msg.ID); err != nil {
		utils.WarnLog("Failed to record poll message for %s: %v", poll.ID, err)
	}
	utils.InfoLog("Poll %s created by %s with %d options", poll.ID, poll.CreatorID, len(poll.Options))
}

func emptyTally(p *types.Poll) []types.PollTally {
	out := make([]types.PollTally, 0, len(p.Options))
	for _, o := range p.Options {
		out = append(out, types.PollTally{Option: o})
	}
	return out
}

func (b *Bot) handlePollVote(s *discordgo.Session, i *discordgo.InteractionCreate, pollID string) {
	if !b.polls.IsInitialized() {
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	position, err := strconv.Atoi(values[0])
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, pollTimeout)
	defer cancel()
	poll, err := b.polls.GetPoll(ctx, pollID)
	if err != nil {
		b.pollError(s, i, err)
		return
	}
	previous, err := b.polls.CastVote(ctx, pollID, interactionUserID(i), position)
	if err != nil {
		b.pollError(s, i, err)
		return
	}
	reply := voteMessage(poll.Options, previous, position)

	if !poll.Public {
		respondEphemeral(s, i, reply)
		return
	}
	tally, err := b.polls.Tally(ctx, pollID)
	if err != nil {
		utils.WarnLog("Failed to tally poll %s: %v", pollID, err)
		respondEphemeral(s, i, reply)
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pollEmbed(poll, tally)},
			Components: pollComponents(poll),
		},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to update poll %s: %v", pollID, err)
		return
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: reply, Flags: discordgo.MessageFlagsEphemeral}); err != nil {
		utils.WarnLog("Discord: failed to confirm vote on %s: %v", pollID, err)
	}
}

func (b *Bot) pollError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, database.ErrPollClosed):
		respondEphemeral(s, i, "This poll is closed.")
	case errors.Is(err, database.ErrPollNotFound):
		respondEphemeral(s, i, "This poll no longer exists.")
	case errors.Is(err, database.ErrInvalidOption):
		respondEphemeral(s, i, "❌ | That option is not part of this poll.")
	default:
		utils.ErrorLog("Poll operation failed: %v", err)
		respondEphemeral(s, i, "❌ | Could not record that, try again later.")
	}
}

// closePoll closes pollID on behalf of the interaction user and returns
// the final poll with its tally.
func (b *Bot) closePoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, pollID string) (*types.Poll, []types.PollTally, error) {
	poll, err := b.polls.GetPoll(ctx, pollID)
	if err != nil {
		return nil, nil, err
	}
	if poll.GuildID != "" && poll.GuildID != i.GuildID {
		return nil, nil, database.ErrPollNotFound
	}
	if !isSameUser(poll.CreatorID, i) && !b.memberCanManagePolls(s, i) {
		return nil, nil, errNotPollOwner
	}
	user := interactionUser(i)
	if err := b.polls.ClosePoll(ctx, pollID, user.Username, time.Now()); err != nil {
		return nil, nil, err
	}
	if poll, err = b.polls.GetPoll(ctx, pollID); err != nil {
		return nil, nil, err
	}
	tally, err := b.polls.Tally(ctx, pollID)
	return poll, tally, err
}

var errNotPollOwner = errors.New("not the poll owner")

// handlePollCloseButton closes the poll from its own message.
func (b *Bot) handlePollCloseButton(s *discordgo.Session, i *discordgo.InteractionCreate, pollID string) {
	if !b.polls.IsInitialized() {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, pollTimeout)
	defer cancel()
	poll, tally, err := b.closePoll(ctx, s, i, pollID)
	if errors.Is(err, errNotPollOwner) {
		respondEphemeral(s, i, "Sorry, only the poll creator or a Poll Manager can close this poll.")
		return
	}
	if err != nil {
		b.pollError(s, i, err)
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pollEmbed(poll, tally)},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to show closed poll %s: %v", pollID, err)
	}
}

// handlePollCloseCommand closes a poll by ID and edits its message.
func (b *Bot) handlePollCloseCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.polls.IsInitialized() {
		respondEphemeral(s, i, "Polls are disabled on this bot.")
		return
	}
	pollID := strings.TrimSpace(optString(i, "id"))
	ctx, cancel := context.WithTimeout(b.ctx, pollTimeout)
	defer cancel()
	poll, tally, err := b.closePoll(ctx, s, i, pollID)
	if errors.Is(err, errNotPollOwner) {
		ephemeralEmbed(s, i, colorWarn, "🔒 Not allowed", "Only the poll creator or a Poll Manager can close this poll.")
		return
	}
	if err != nil {
		b.pollError(s, i, err)
		return
	}

	if poll.MessageID != "" {
		embeds := []*discordgo.MessageEmbed{pollEmbed(poll, tally)}
		components := []discordgo.MessageComponent{}
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         poll.MessageID,
			Channel:    poll.ChannelID,
			Embeds:     &embeds,
			Components: &components,
		})
		if err != nil {
			utils.WarnLog("Discord: failed to edit closed poll %s: %v", poll.ID, err)
			b.fail(channelIDFromInteraction(i), "❌ Poll message", "The poll is closed but its message could not be updated.")
		}
	}
	ephemeralEmbed(s, i, colorSuccess, "✅ Poll closed", fmt.Sprintf("**%s** no longer accepts votes.", poll.Title))
}
