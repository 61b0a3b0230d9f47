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

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DBManager {
	t.Helper()
	m, err := NewDBManager("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func samplePoll(id string) *types.Poll {
	return &types.Poll{
		ID:        id,
		GuildID:   "guild",
		ChannelID: "chan",
		CreatorID: "creator",
		Title:     "Best season?",
		Public:    true,
		Options:   []string{"Spring", "Summer", "Fall", "Winter"},
	}
}

func TestCreateAndGetPoll(t *testing.T) {
	m := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, m.CreatePoll(ctx, samplePoll("p1")))
	require.NoError(t, m.SetPollMessage(ctx, "p1", "msg-1"))

	got, err := m.GetPoll(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", got.MessageID)
	assert.True(t, got.Public)
	assert.False(t, got.Closed)
	assert.Nil(t, got.ClosedAt)
	assert.Equal(t, []string{"Spring", "Summer", "Fall", "Winter"}, got.Options)

	_, err = m.GetPoll(ctx, "missing")
	assert.ErrorIs(t, err, ErrPollNotFound)
	assert.ErrorIs(t, m.SetPollMessage(ctx, "missing", "x"), ErrPollNotFound)
}

func TestCreatePollErrorCarriesLocation(t *testing.T) {
	t.Setenv("ERROR_DETAIL_LEVEL", "simple")
	m := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, m.CreatePoll(ctx, samplePoll("dup")))
	err := m.CreatePoll(ctx, samplePoll("dup"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "polls.go:")
	assert.Contains(t, err.Error(), "(*DBManager).CreatePoll")
	assert.Contains(t, err.Error(), "insert poll")
}

func TestUninitializedStore(t *testing.T) {
	var m *DBManager
	assert.False(t, m.IsInitialized())
	assert.ErrorContains(t, m.CreatePoll(context.Background(), samplePoll("p1")), "database not initialized")
	_, err := m.CountOpenPolls(context.Background())
	assert.ErrorContains(t, err, "database not initialized")

	assert.True(t, newTestDB(t).IsInitialized())
}

func TestConnectTimeout(t *testing.T) {
	t.Setenv("DB_CONNECT_TIMEOUT", "")
	assert.Equal(t, 10*time.Second, connectTimeout())
	t.Setenv("DB_CONNECT_TIMEOUT", "3s")
	assert.Equal(t, 3*time.Second, connectTimeout())
	t.Setenv("DB_CONNECT_TIMEOUT", "7")
	assert.Equal(t, 7*time.Second, connectTimeout())
}

func TestCastVoteAndTally(t *testing.T) {
	m := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, m.CreatePoll(ctx, samplePoll("p1")))

	prev, err := m.CastVote(ctx, "p1", "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, -1, prev)

	_, err = m.CastVote(ctx, "p1", "u2", 2)
	require.NoError(t, err)

	prev, err = m.CastVote(ctx, "p1", "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, prev, "changing a vote reports the old choice")

	_, err = m.CastVote(ctx, "p1", "u3", 4)
	assert.ErrorIs(t, err, ErrInvalidOption)

	got, err := m.Tally(ctx, "p1")
	require.NoError(t, err)
	want := []types.PollTally{
		{Option: "Spring", Votes: 0},
		{Option: "Summer", Votes: 0},
		{Option: "Fall", Votes: 2},
		{Option: "Winter", Votes: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tally() mismatch (-want +got):\n%s", diff)
	}
}

func TestClosePoll(t *testing.T) {
	m := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, m.CreatePoll(ctx, samplePoll("p1")))
	require.NoError(t, m.CreatePoll(ctx, samplePoll("p2")))

	open, err := m.CountOpenPolls(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, open)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.ClosePoll(ctx, "p1", "mod", at))
	assert.ErrorIs(t, m.ClosePoll(ctx, "p1", "mod", at), ErrPollClosed)
	assert.ErrorIs(t, m.ClosePoll(ctx, "nope", "mod", at), ErrPollNotFound)

	p, err := m.GetPoll(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Closed)
	assert.Equal(t, "mod", p.ClosedBy)
	require.NotNil(t, p.ClosedAt)
	assert.True(t, at.Equal(*p.ClosedAt))

	_, err = m.CastVote(ctx, "p1", "u1", 0)
	assert.ErrorIs(t, err, ErrPollClosed)

	open, err = m.CountOpenPolls(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)
}

func TestRebind(t *testing.T) {
	pg := &DBManager{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &DBManager{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewDBManager("oracle", "")
	assert.Error(t, err)
}
