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
	"fmt"

	"github.com/kurozora/kurozora-bot/pkg/utils"
)

var schema = []struct {
	name string
	ddl  string
}{
	{"polls", `
		CREATE TABLE IF NOT EXISTS polls (
			id TEXT PRIMARY KEY,
			guild_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			message_id TEXT NOT NULL DEFAULT '',
			creator_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			public BOOLEAN NOT NULL DEFAULT FALSE,
			closed BOOLEAN NOT NULL DEFAULT FALSE,
			closed_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			closed_at TIMESTAMP
		)`},
	{"poll_options", `
		CREATE TABLE IF NOT EXISTS poll_options (
			poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (poll_id, position)
		)`},
	{"poll_votes", `
		CREATE TABLE IF NOT EXISTS poll_votes (
			poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			voted_at TIMESTAMP NOT NULL,
			PRIMARY KEY (poll_id, user_id)
		)`},
	{"poll_votes_position_idx", `
		CREATE INDEX IF NOT EXISTS poll_votes_position_idx ON poll_votes (poll_id, position)`},
}

// initSchema creates database tables if they don't exist
func (m *DBManager) initSchema(ctx context.Context) error {
	utils.InfoLog("Initializing database schema")

	if m == nil || m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	for _, s := range schema {
		if _, err := m.db.ExecContext(ctx, s.ddl); err != nil {
			utils.ErrorLog("Failed to create %s: %v", s.name, err)
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}

	utils.InfoLog("Database schema initialized successfully")
	return nil
}
