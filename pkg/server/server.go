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

// Package server exposes the bot status over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kurozora/kurozora-bot/pkg/selection"
	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// SelectionSource reports selection activity.
type SelectionSource interface {
	Stats() selection.Stats
	Active() []selection.ActiveSession
}

// PollCounter reports open polls.
type PollCounter interface {
	CountOpenPolls(ctx context.Context) (int, error)
}

// Config holds the status server dependencies.
type Config struct {
	Port       int
	APIKey     string
	Selections SelectionSource
	Polls      PollCounter
	Uptime     func() time.Duration

	httpSrv *http.Server
}

// NewServer prepares the status server. polls may be nil; a nil uptime
// counts from this call.
func NewServer(port int, apiKey string, selections SelectionSource, polls PollCounter, uptime func() time.Duration) *Config {
	if uptime == nil {
		created := time.Now()
		uptime = func() time.Duration { return time.Since(created) }
	}
	c := &Config{
		Port:       port,
		APIKey:     apiKey,
		Selections: selections,
		Polls:      polls,
		Uptime:     uptime,
	}
	c.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return c
}

// Router builds the gin engine with every route.
func (c *Config) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), c.recovery())
	router.Use(cors.Default())

	router.GET("/healthz", c.healthz)
	c.setupAPI(router)
	return router
}

// Serve listens until Shutdown is called. It returns nil at once when
// Shutdown already ran.
func (c *Config) Serve() error {
	utils.InfoLog("Status API listening on :%d", c.Port)
	if err := c.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully.
func (c *Config) Shutdown(ctx context.Context) error {
	return c.httpSrv.Shutdown(ctx)
}
