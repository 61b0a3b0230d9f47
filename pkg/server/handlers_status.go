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

package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

func (c *Config) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "ok"})
}

// statusSummary reports selection counters, open polls and uptime.
func (c *Config) statusSummary(ctx *gin.Context) {
	var stats selection.Stats
	if c.Selections != nil {
		stats = c.Selections.Stats()
	}

	openPolls := -1
	if c.Polls != nil {
		n, err := c.Polls.CountOpenPolls(ctx.Request.Context())
		if err != nil {
			utils.WarnLog("Status API: failed to count open polls: %v", err)
		} else {
			openPolls = n
		}
	}

	uptime := c.Uptime()
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"selections":     stats,
			"open_polls":     openPolls,
			"uptime":         uptime.Truncate(time.Second).String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
	})
}

// activeSessions lists open selections, oldest first.
func (c *Config) activeSessions(ctx *gin.Context) {
	sessions := []selection.ActiveSession{}
	if c.Selections != nil {
		sessions = c.Selections.Active()
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) })
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Data: sessions})
}
