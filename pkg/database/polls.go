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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidOption = errors.New("invalid poll option")
)

func (m *DBManager) ready() error {
	if !m.IsInitialized() {
		return fmt.Errorf("database not initialized")
	}
	return nil
}

// CreatePoll stores a poll and its options. Options keep their order.
func (m *DBManager) CreatePoll(ctx context.Context, p *types.Poll) error {
	return utils.ErrorWithLocation(m.createPoll(ctx, p))
}

func (m *DBManager) createPoll(ctx context.Context, p *types.Poll) error {
	if err := m.ready(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	utils.DebugLog("Database: creating poll %s (%q, %d options)", p.ID, p.Title, len(p.Options))

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.rebind(`
		INSERT INTO polls (id, guild_id, channel_id, message_id, creator_id, title, description, public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.GuildID, p.ChannelID, p.MessageID, p.CreatorID, p.Title, p.Description, p.Public, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, m.rebind(`INSERT INTO poll_options (poll_id, position, label) VALUES (?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, label := range p.Options {
		if _, err := stmt.ExecContext(ctx, p.ID, i, label); err != nil {
			return fmt.Errorf("insert poll option %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SetPollMessage records the message that carries the poll.
func (m *DBManager) SetPollMessage(ctx context.Context, pollID, messageID string) error {
	if err := m.ready(); err != nil {
		return err
	}
	res, err := m.db.ExecContext(ctx, m.rebind(`UPDATE polls SET message_id = ? WHERE id = ?`), messageID, pollID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPollNotFound
	}
	return nil
}

// GetPoll loads a poll with its options.
func (m *DBManager) GetPoll(ctx context.Context, pollID string) (*types.Poll, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}

	p := &types.Poll{ID: pollID}
	var closedAt sql.NullTime
	err := m.db.QueryRowContext(ctx, m.rebind(`
		SELECT guild_id, channel_id, message_id, creator_id, title, description, public, closed, closed_by, created_at, closed_at
		FROM polls WHERE id = ?`), pollID,
	).Scan(&p.GuildID, &p.ChannelID, &p.MessageID, &p.CreatorID, &p.Title, &p.Description,
		&p.Public, &p.Closed, &p.ClosedBy, &p.CreatedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load poll %s: %w", pollID, err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}

	rows, err := m.db.QueryContext(ctx, m.rebind(`SELECT label FROM poll_options WHERE poll_id = ? ORDER BY position`), pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		p.Options = append(p.Options, label)
	}
	return p, rows.Err()
}

// CastVote records userID's choice. It returns the previous choice, or -1
// on a first vote.
func (m *DBManager) CastVote(ctx context.Context, pollID, userID string, position int) (int, error) {
	if err := m.ready(); err != nil {
		return -1, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, err
	}
	defer tx.Rollback()

	var closed bool
	var options int
	err = tx.QueryRowContext(ctx, m.rebind(`
		SELECT p.closed, (SELECT COUNT(*) FROM poll_options o WHERE o.poll_id = p.id)
		FROM polls p WHERE p.id = ?`), pollID).Scan(&closed, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, ErrPollNotFound
	}
	if err != nil {
		return -1, err
	}
	if closed {
		return -1, ErrPollClosed
	}
	if position < 0 || position >= options {
		return -1, fmt.Errorf("%w: %d", ErrInvalidOption, position)
	}

	previous := -1
	err = tx.QueryRowContext(ctx, m.rebind(`SELECT position FROM poll_votes WHERE poll_id = ? AND user_id = ?`),
		pollID, userID).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return -1, err
	}

	if _, err := tx.ExecContext(ctx, m.rebind(`
		INSERT INTO poll_votes (poll_id, user_id, position, voted_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (poll_id, user_id) DO UPDATE SET position = excluded.position, voted_at = excluded.voted_at`),
		pollID, userID, position, time.Now().UTC(),
	); err != nil {
		return -1, fmt.Errorf("record vote: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return -1, err
	}
	utils.DebugLog("Database: %s voted %d on poll %s (previous %d)", userID, position, pollID, previous)
	return previous, nil
}

// Tally counts votes per option, in option order.
func (m *DBManager) Tally(ctx context.Context, pollID string) ([]types.PollTally, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, m.rebind(`
		SELECT o.label, COUNT(v.user_id)
		FROM poll_options o
		LEFT JOIN poll_votes v ON v.poll_id = o.poll_id AND v.position = o.position
		WHERE o.poll_id = ?
		GROUP BY o.position, o.label
		ORDER BY o.position`), pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.PollTally
	for rows.Next() {
		var t types.PollTally
		if err := rows.Scan(&t.Option, &t.Votes); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrPollNotFound
	}
	return out, nil
}

// ClosePoll marks a poll closed by userID. Closing twice is ErrPollClosed.
func (m *DBManager) ClosePoll(ctx context.Context, pollID, userID string, at time.Time) error {
	if err := m.ready(); err != nil {
		return err
	}
	res, err := m.db.ExecContext(ctx, m.rebind(`
		UPDATE polls SET closed = ?, closed_by = ?, closed_at = ? WHERE id = ? AND closed = ?`),
		true, userID, at.UTC(), pollID, false)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		utils.InfoLog("Poll %s closed by %s", pollID, userID)
		return nil
	}
	if _, err := m.GetPoll(ctx, pollID); err != nil {
		return err
	}
	return ErrPollClosed
}

// CountOpenPolls returns how many polls accept votes.
func (m *DBManager) CountOpenPolls(ctx context.Context) (int, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	var n int
	err := m.db.QueryRowContext(ctx, m.rebind(`SELECT COUNT(*) FROM polls WHERE closed = ?`), false).Scan(&n)
	return n, err
}
