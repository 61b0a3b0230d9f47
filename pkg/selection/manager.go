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

	"github.com/kurozora/kurozora-bot/pkg/utils"
)

type sessionKey struct {
	requester string
	channel   string
}

// Stats counts sessions by how they ended.
type Stats struct {
	Active     int `json:"active"`
	Opened     int `json:"opened"`
	Resolved   int `json:"resolved"`
	Cancelled  int `json:"cancelled"`
	TimedOut   int `json:"timed_out"`
	Superseded int `json:"superseded"`
}

// ActiveSession is a snapshot of one open session.
type ActiveSession struct {
	RequesterID string    `json:"requester_id"`
	ChannelID   string    `json:"channel_id"`
	Candidates  int       `json:"candidates"`
	CreatedAt   time.Time `json:"created_at"`
	Deadline    time.Time `json:"deadline"`
}

// Manager keeps at most one active session per requester and channel.
// Opening a second one supersedes the first.
type Manager struct {
	chat Chat

	mu     sync.Mutex
	active map[sessionKey]*Session
	stats  Stats
}

// NewManager returns a manager that opens sessions on chat.
func NewManager(chat Chat) *Manager {
	return &Manager{chat: chat, active: make(map[sessionKey]*Session)}
}

// Open starts a session for req. A session already open for the same
// requester and channel is cancelled and fully torn down first.
func (m *Manager) Open(ctx context.Context, req Request) *Session {
	k := sessionKey{requester: req.RequesterID, channel: req.ChannelID}
	for {
		m.mu.Lock()
		prev, ok := m.active[k]
		if !ok {
			s := newSession(ctx, m.chat, req)
			s.onDone = m.release
			m.active[k] = s
			m.stats.Opened++
			m.mu.Unlock()
			s.start()
			utils.DebugLog("Selection: opened for %s in %s (%d candidates, window %s)",
				req.RequesterID, req.ChannelID, len(req.Candidates), req.Window)
			return s
		}
		m.mu.Unlock()

		utils.DebugLog("Selection: superseding session of %s in %s", req.RequesterID, req.ChannelID)
		prev.supersede()
		<-prev.Done()
	}
}

func (m *Manager) release(s *Session) {
	k := sessionKey{requester: s.req.RequesterID, channel: s.req.ChannelID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[k] == s {
		delete(m.active, k)
	}
	switch s.outcome.State {
	case Resolved:
		m.stats.Resolved++
	case TimedOut:
		m.stats.TimedOut++
	case Cancelled:
		if s.outcome.Superseded {
			m.stats.Superseded++
		} else {
			m.stats.Cancelled++
		}
	}
}

// Lookup returns the active session for a requester in a channel.
func (m *Manager) Lookup(requesterID, channelID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[sessionKey{requester: requesterID, channel: channelID}]
	return s, ok
}

// Stats returns a copy of the counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats
	st.Active = len(m.active)
	return st
}

// Active lists the open sessions.
func (m *Manager) Active() []ActiveSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ActiveSession, 0, len(m.active))
	for _, s := range m.active {
		out = append(out, ActiveSession{
			RequesterID: s.req.RequesterID,
			ChannelID:   s.req.ChannelID,
			Candidates:  len(s.req.Candidates),
			CreatedAt:   s.createdAt,
			Deadline:    s.deadline,
		})
	}
	return out
}

// Close cancels every open session and waits for them to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.active))
	for _, s := range m.active {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
	for _, s := range sessions {
		<-s.Done()
	}
}
