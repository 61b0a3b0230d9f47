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
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requester = "user-a"
	other     = "user-b"
	channel   = "chan-1"
	results   = "results-msg"
)

func openSession(t *testing.T, chat *fakeChat, n int, window time.Duration) (*Manager, *Session) {
	t.Helper()
	m := NewManager(chat)
	s := m.Open(context.Background(), Request{
		RequesterID:      requester,
		ChannelID:        channel,
		ResultsMessageID: results,
		Candidates:       sampleCandidates(n),
		Window:           window,
	})
	return m, s
}

func TestSessionResolvesChosenIndex(t *testing.T) {
	const n = 5
	for v := 1; v <= n; v++ {
		t.Run(strconv.Itoa(v), func(t *testing.T) {
			chat := newFakeChat()
			_, s := openSession(t, chat, n, time.Second)
			want := s.Candidates()[v-1]

			chat.say(channel, requester, "reply-1", strconv.Itoa(v))
			out := s.Wait()

			require.Equal(t, Resolved, out.State)
			assert.Equal(t, want, out.Selected)
			assert.Equal(t, v, out.Selected.DisplayIndex)
			assert.Equal(t, 1, chat.deletions("reply-1"))
			assert.Equal(t, 1, chat.deletions(results))
			assert.Zero(t, chat.listeners(), "listener must be removed")
			assert.Equal(t, Resolved, s.State())
		})
	}
}

func TestSessionInvalidRepliesDoNotExtendDeadline(t *testing.T) {
	chat := newFakeChat()
	window := 300 * time.Millisecond
	_, s := openSession(t, chat, 5, window)
	start := s.CreatedAt()

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		bad := []string{"0", "6", "abc", "1.5", "-1", " ", "2x", "cancel please"}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
			}
			chat.say(channel, requester, fmt.Sprintf("bad-%d", i), bad[i%len(bad)])
		}
	}()

	out := s.Wait()
	close(stop)
	<-finished
	elapsed := time.Since(start)

	require.Equal(t, TimedOut, out.State)
	assert.GreaterOrEqual(t, elapsed, window)
	assert.Less(t, elapsed, window+250*time.Millisecond)
	assert.Positive(t, out.Invalid)
	assert.Len(t, chat.sentWithContent(InvalidReplyText(5)), out.Invalid)
	assert.Len(t, chat.sentWithContent(TimedOutText()), 1)
	assert.Equal(t, s.Deadline(), start.Add(window))

	for i := 0; i < out.Invalid; i++ {
		assert.Equal(t, 1, chat.deletions(fmt.Sprintf("bad-%d", i)))
	}
	assert.Zero(t, chat.deletions(results), "results stay up on timeout")
	assert.Zero(t, chat.listeners())
}

func TestSessionCancelIsCaseInsensitive(t *testing.T) {
	for _, reply := range []string{"cancel", "CANCEL", "Cancel", "  cAnCeL  "} {
		t.Run(reply, func(t *testing.T) {
			chat := newFakeChat()
			_, s := openSession(t, chat, 3, time.Second)

			chat.say(channel, requester, "reply-cancel", reply)
			out := s.Wait()

			assert.Equal(t, Cancelled, out.State)
			assert.False(t, out.Superseded)
			assert.Equal(t, 1, chat.deletions("reply-cancel"))
			assert.Equal(t, 1, chat.deletions(results))
			assert.Empty(t, chat.sentMessages(), "cancel emits nothing")
			assert.Zero(t, chat.listeners())
		})
	}
}

func TestSessionTimeoutIgnoresLateReply(t *testing.T) {
	chat := newFakeChat()
	_, s := openSession(t, chat, 3, 50*time.Millisecond)

	out := s.Wait()
	require.Equal(t, TimedOut, out.State)

	chat.say(channel, requester, "late", "1")

	assert.Equal(t, TimedOut, s.Wait().State)
	assert.Len(t, chat.sentWithContent(TimedOutText()), 1)
	assert.Zero(t, chat.deletions("late"))
	assert.Zero(t, chat.listeners())
}

func TestSessionIgnoresOtherUsersAndChannels(t *testing.T) {
	chat := newFakeChat()
	_, s := openSession(t, chat, 3, time.Second)

	chat.say(channel, other, "b-1", "1")
	chat.say("chan-2", requester, "a-elsewhere", "3")
	assert.Equal(t, AwaitingInput, s.State())

	chat.say(channel, requester, "a-1", "2")
	out := s.Wait()

	require.Equal(t, Resolved, out.State)
	assert.Equal(t, 2, out.Selected.DisplayIndex)
	assert.Zero(t, chat.deletions("b-1"))
	assert.Zero(t, chat.deletions("a-elsewhere"))
	assert.Zero(t, out.Invalid)
}

func TestSessionProcessesRepliesInOrder(t *testing.T) {
	chat := newFakeChat()
	_, s := openSession(t, chat, 3, time.Second)

	chat.say(channel, requester, "r1", "nope")
	chat.say(channel, requester, "r2", "3")
	chat.say(channel, requester, "r3", "1")
	out := s.Wait()

	require.Equal(t, Resolved, out.State)
	assert.Equal(t, 3, out.Selected.DisplayIndex)
	assert.Equal(t, 1, out.Invalid)
	assert.Equal(t, 1, chat.deletions("r1"))
	assert.Equal(t, 1, chat.deletions("r2"))
	assert.Zero(t, chat.deletions("r3"), "messages after the terminal reply are dropped")
}

func TestSessionNoticesExpire(t *testing.T) {
	chat := newFakeChat()
	m := NewManager(chat)
	s := m.Open(context.Background(), Request{
		RequesterID:      requester,
		ChannelID:        channel,
		ResultsMessageID: results,
		Candidates:       sampleCandidates(2),
		Window:           time.Second,
		NoticeTTL:        30 * time.Millisecond,
	})

	chat.say(channel, requester, "bad", "9")
	require.Eventually(t, func() bool {
		return len(chat.sentWithContent(InvalidReplyText(2))) == 1
	}, time.Second, 5*time.Millisecond)
	noticeID := chat.sentWithContent(InvalidReplyText(2))[0].ID

	require.Eventually(t, func() bool { return chat.deletions(noticeID) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, AwaitingInput, s.State())

	chat.say(channel, requester, "good", "1")
	assert.Equal(t, Resolved, s.Wait().State)
	assert.Equal(t, 1, chat.deletions(noticeID))
}

func TestSessionContextCancel(t *testing.T) {
	chat := newFakeChat()
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(chat)
	s := m.Open(ctx, Request{
		RequesterID:      requester,
		ChannelID:        channel,
		ResultsMessageID: results,
		Candidates:       sampleCandidates(2),
		Window:           time.Minute,
	})

	cancel()
	out := s.Wait()

	assert.Equal(t, Cancelled, out.State)
	assert.False(t, out.Superseded)
	assert.Equal(t, 1, chat.deletions(results))
	assert.Zero(t, chat.listeners())
}

func TestSessionReplyQueuedBeforeDeadlineWins(t *testing.T) {
	// the reply is queued in time but only processed once the timer
	// has already fired as well
	for i := 0; i < 20; i++ {
		chat := newFakeChat()
		s := newSession(context.Background(), chat, Request{
			RequesterID:      requester,
			ChannelID:        channel,
			ResultsMessageID: results,
			Candidates:       sampleCandidates(3),
			Window:           10 * time.Millisecond,
		})
		s.onMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "in-time",
			ChannelID: channel,
			Content:   "2",
			Author:    &discordgo.User{ID: requester},
		}})
		time.Sleep(20 * time.Millisecond)
		s.start()

		out := s.Wait()
		require.Equal(t, Resolved, out.State, "run %d", i)
		assert.Equal(t, 2, out.Selected.DisplayIndex)
		assert.Empty(t, chat.sentWithContent(TimedOutText()))
		assert.Zero(t, chat.listeners())
	}
}

func TestSessionAttachReleasesQueuedReplies(t *testing.T) {
	chat := newFakeChat()
	m := NewManager(chat)
	s := m.Open(context.Background(), Request{
		RequesterID: requester,
		ChannelID:   channel,
		Candidates:  sampleCandidates(2),
		Window:      time.Second,
	})

	chat.say(channel, requester, "early", "1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, AwaitingInput, s.State(), "nothing is processed before the listing exists")

	require.True(t, s.Attach(results))
	out := s.Wait()

	assert.Equal(t, Resolved, out.State)
	assert.Equal(t, 1, chat.deletions("early"))
	assert.Equal(t, 1, chat.deletions(results))
	assert.False(t, s.Attach("again"), "attaching to an ended session fails")
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		in         string
		wantChoice int
		wantCancel bool
		wantErr    bool
	}{
		{"1", 1, false, false},
		{" 3 ", 3, false, false},
		{"cancel", 0, true, false},
		{"CaNcEl", 0, true, false},
		{"0", 0, false, true},
		{"4", 0, false, true},
		{"-2", 0, false, true},
		{"two", 0, false, true},
		{"", 0, false, true},
		{"1 2", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			choice, cancel, err := ParseReply(tt.in, 3)
			assert.Equal(t, tt.wantChoice, choice)
			assert.Equal(t, tt.wantCancel, cancel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReply)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
