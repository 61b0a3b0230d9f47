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
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
)

type sentMessage struct {
	ID        string
	ChannelID string
	Msg       *discordgo.MessageSend
}

// fakeChat records sends and deletes and fans messages out to handlers.
type fakeChat struct {
	mu       sync.Mutex
	seq      int
	handlers map[int]func(*discordgo.Session, *discordgo.MessageCreate)
	added    int
	sent     []sentMessage
	deleted  []string
	sendErr  error
	// onSend runs after a successful send, outside the lock.
	onSend func(sentMessage)
}

func newFakeChat() *fakeChat {
	return &fakeChat{handlers: make(map[int]func(*discordgo.Session, *discordgo.MessageCreate))}
}

func (c *fakeChat) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	c.mu.Lock()
	if c.sendErr != nil {
		c.mu.Unlock()
		return nil, c.sendErr
	}
	c.seq++
	sm := sentMessage{ID: fmt.Sprintf("bot-%d", c.seq), ChannelID: channelID, Msg: data}
	c.sent = append(c.sent, sm)
	hook := c.onSend
	c.mu.Unlock()

	if hook != nil {
		hook(sm)
	}
	return &discordgo.Message{ID: sm.ID, ChannelID: channelID, Content: data.Content}, nil
}

func (c *fakeChat) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChat) AddHandler(handler interface{}) func() {
	fn := handler.(func(*discordgo.Session, *discordgo.MessageCreate))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := c.seq
	c.handlers[id] = fn
	c.added++
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// say delivers a user message to every registered handler, in order.
func (c *fakeChat) say(channelID, authorID, messageID, content string) {
	c.mu.Lock()
	fns := make([]func(*discordgo.Session, *discordgo.MessageCreate), 0, len(c.handlers))
	for _, fn := range c.handlers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        messageID,
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	}}
	for _, fn := range fns {
		fn(nil, m)
	}
}

func (c *fakeChat) listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

func (c *fakeChat) addedHandlers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.added
}

func (c *fakeChat) deletions(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.deleted {
		if d == id {
			n++
		}
	}
	return n
}

func (c *fakeChat) sentWithContent(content string) []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sentMessage
	for _, s := range c.sent {
		if s.Msg.Content == content {
			out = append(out, s)
		}
	}
	return out
}

func (c *fakeChat) sentMessages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

func sampleCandidates(n int) []types.Candidate {
	out := make([]types.Candidate, n)
	for i := range out {
		out[i] = types.Candidate{
			DisplayIndex: i + 1,
			Title:        fmt.Sprintf("Title %d", i+1),
			ShortMeta:    "**Finished Airing**",
			Ref:          fmt.Sprintf("/v1/shows/%d", 100+i),
		}
	}
	return out
}
