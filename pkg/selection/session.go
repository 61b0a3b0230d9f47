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
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// State of a selection session. Everything but AwaitingInput is terminal.
type State int

const (
	AwaitingInput State = iota
	Resolved
	Cancelled
	TimedOut
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Outcome is how a session ended.
type Outcome struct {
	State      State
	Selected   types.Candidate // set when State == Resolved
	Superseded bool            // cancelled because the requester opened another session
	Invalid    int             // rejected replies seen before the end
}

// Request describes a session to open.
type Request struct {
	RequesterID string
	ChannelID   string
	// ResultsMessageID may be left empty and set later with Attach.
	ResultsMessageID string
	Candidates       []types.Candidate
	Window           time.Duration
	// NoticeTTL removes validation notices after this long; 0 keeps them.
	NoticeTTL time.Duration
}

type reply struct {
	msg *discordgo.Message
	at  time.Time
}

type notice struct {
	id      string
	expires time.Time
}

// Session is one pending selection. It listens to the requester's messages
// in the channel until it resolves, is cancelled or times out, and removes
// its listener on every exit.
type Session struct {
	req       Request
	chat      Chat
	createdAt time.Time
	deadline  time.Time

	ctx        context.Context
	cancel     context.CancelFunc
	superseded bool // guarded by mu

	mu       sync.Mutex
	inbox    []reply
	closed   bool
	state    State
	notify   chan struct{}
	results  string
	attached chan struct{}

	removeHandler func()
	onDone        func(*Session)
	done          chan struct{}
	outcome       Outcome
	notices       []notice
}

func newSession(ctx context.Context, chat Chat, req Request) *Session {
	if req.Window <= 0 {
		req.Window = 30 * time.Second
	}
	req.Candidates = append([]types.Candidate(nil), req.Candidates...)
	now := time.Now()
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		req:       req,
		chat:      chat,
		createdAt: now,
		deadline:  now.Add(req.Window),
		ctx:       sctx,
		cancel:    cancel,
		notify:    make(chan struct{}, 1),
		results:   req.ResultsMessageID,
		attached:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	if req.ResultsMessageID != "" {
		close(s.attached)
	}
	return s
}

func (s *Session) start() {
	s.removeHandler = s.chat.AddHandler(s.onMessage)
	go s.run()
}

// RequesterID is the user whose replies the session reads.
func (s *Session) RequesterID() string { return s.req.RequesterID }

// ChannelID is the channel the session listens in.
func (s *Session) ChannelID() string { return s.req.ChannelID }

// CreatedAt is when the session opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Deadline is fixed at creation and never extended.
func (s *Session) Deadline() time.Time { return s.deadline }

// Candidates returns a copy of the offered candidates.
func (s *Session) Candidates() []types.Candidate {
	return append([]types.Candidate(nil), s.req.Candidates...)
}

// State reports the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reached a terminal state and cleaned up.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session ends and returns its outcome.
func (s *Session) Wait() Outcome {
	<-s.done
	return s.outcome
}

// Attach records the results message once it is posted. Replies queued
// before then are processed afterwards. It reports false when the session
// already ended.
func (s *Session) Attach(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case <-s.attached:
		return true
	default:
	}
	s.results = messageID
	close(s.attached)
	return true
}

func (s *Session) isAttached() bool {
	select {
	case <-s.attached:
		return true
	default:
		return false
	}
}

func (s *Session) resultsID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

func (s *Session) supersede() {
	s.mu.Lock()
	s.superseded = true
	s.mu.Unlock()
	s.cancel()
}

// onMessage runs on the gateway goroutine; it only queues.
func (s *Session) onMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}
	if m.ChannelID != s.req.ChannelID || m.Author.ID != s.req.RequesterID {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inbox = append(s.inbox, reply{msg: m.Message, at: time.Now()})
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Session) takeInbox() []reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.inbox
	s.inbox = nil
	return msgs
}

func (s *Session) run() {
	defer close(s.done)
	defer func() {
		if s.onDone != nil {
			s.onDone(s)
		}
	}()
	defer s.removeHandler()
	defer s.cancel()

	timer := time.NewTimer(time.Until(s.deadline))
	defer timer.Stop()
	var noticeTimer *time.Timer
	defer func() {
		if noticeTimer != nil {
			noticeTimer.Stop()
		}
	}()

	// replies queue until the results message is attached
	attachC := (<-chan struct{})(s.attached)
	var notifyC <-chan struct{}

	for {
		var noticeC <-chan time.Time
		if noticeTimer != nil {
			noticeC = noticeTimer.C
		}

		select {
		case <-s.ctx.Done():
			s.mu.Lock()
			superseded := s.superseded
			s.mu.Unlock()
			s.deleteMessage(s.resultsID())
			s.finish(Outcome{State: Cancelled, Superseded: superseded})
			return

		case <-timer.C:
			// replies that arrived in time still count
			if s.isAttached() && s.drain() {
				return
			}
			s.timeout()
			return

		case <-noticeC:
			noticeTimer = s.expireNotices(time.Now())

		case <-attachC:
			attachC, notifyC = nil, s.notify
			if s.drain() {
				return
			}

		case <-notifyC:
			if s.drain() {
				return
			}
		}

		if noticeTimer == nil && len(s.notices) > 0 {
			noticeTimer = time.NewTimer(time.Until(s.notices[0].expires))
		}
	}
}

// drain applies queued replies in arrival order and reports whether the
// session ended. A reply is late when it arrived at or after the deadline.
func (s *Session) drain() bool {
	for _, r := range s.takeInbox() {
		if !r.at.Before(s.deadline) {
			s.timeout()
			return true
		}
		if s.handle(r.msg) {
			return true
		}
	}
	return false
}

// handle applies one requester message and reports whether the session ended.
func (s *Session) handle(m *discordgo.Message) bool {
	s.deleteMessage(m.ID)

	choice, cancel, err := ParseReply(m.Content, len(s.req.Candidates))
	switch {
	case cancel:
		utils.DebugLog("Selection: %s cancelled in %s", s.req.RequesterID, s.req.ChannelID)
		s.deleteMessage(s.resultsID())
		s.finish(Outcome{State: Cancelled})
		return true
	case err != nil:
		utils.DebugLog("Selection: rejected reply from %s: %v", s.req.RequesterID, err)
		s.outcome.Invalid++
		s.sendNotice(InvalidReplyText(len(s.req.Candidates)))
		return false
	}

	s.deleteMessage(s.resultsID())
	s.finish(Outcome{State: Resolved, Selected: s.req.Candidates[choice-1]})
	return true
}

func (s *Session) timeout() {
	s.finish(Outcome{State: TimedOut})
	if _, err := s.chat.ChannelMessageSendComplex(s.req.ChannelID, &discordgo.MessageSend{
		Content:         TimedOutText(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		utils.WarnLog("Selection: failed to send timeout notice in %s: %v", s.req.ChannelID, err)
	}
}

// finish moves to a terminal state once; later calls are ignored.
func (s *Session) finish(o Outcome) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.inbox = nil
	s.state = o.State
	s.mu.Unlock()

	o.Invalid = s.outcome.Invalid
	s.outcome = o
	for _, n := range s.notices {
		s.deleteMessage(n.id)
	}
	s.notices = nil
	utils.DebugLog("Selection: %s in %s ended %s", s.req.RequesterID, s.req.ChannelID, o.State)
}

func (s *Session) sendNotice(text string) {
	msg, err := s.chat.ChannelMessageSendComplex(s.req.ChannelID, &discordgo.MessageSend{Content: text})
	if err != nil {
		utils.WarnLog("Selection: failed to send notice in %s: %v", s.req.ChannelID, err)
		return
	}
	if s.req.NoticeTTL > 0 && msg != nil {
		s.notices = append(s.notices, notice{id: msg.ID, expires: time.Now().Add(s.req.NoticeTTL)})
	}
}

// expireNotices deletes due notices and returns a timer for the next one.
func (s *Session) expireNotices(now time.Time) *time.Timer {
	i := 0
	for ; i < len(s.notices) && !s.notices[i].expires.After(now); i++ {
		s.deleteMessage(s.notices[i].id)
	}
	s.notices = s.notices[i:]
	if len(s.notices) == 0 {
		return nil
	}
	return time.NewTimer(s.notices[0].expires.Sub(now))
}

func (s *Session) deleteMessage(id string) {
	if id == "" {
		return
	}
	if err := s.chat.ChannelMessageDelete(s.req.ChannelID, id); err != nil {
		utils.WarnLog("Selection: failed to delete message %s in %s: %v", id, s.req.ChannelID, err)
	}
}
