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

// Package music finds tracks for the music search and the matching
// Spotify and Apple Music links.
package music

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/kurozora/kurozora-bot/pkg/utils"
	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
	"golang.org/x/sync/errgroup"
)

// MaxTracks is how many tracks a search lists.
const MaxTracks = 10

// Track is one playable result.
type Track struct {
	VideoID  string
	Title    string
	Author   string
	Duration string // "3:20", empty when unknown
}

// URL is the watch link of the track.
func (t Track) URL() string { return "https://youtu.be/" + t.VideoID }

// Source looks tracks up on one provider.
type Source func(ctx context.Context, query string) ([]Track, error)

// YouTubeSource searches YouTube videos.
func YouTubeSource(httpClient *http.Client) Source {
	return func(ctx context.Context, query string) ([]Track, error) {
		res, err := ytsearch.NewClient(httpClient).Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("youtube search: %w", err)
		}
		out := make([]Track, 0, len(res.Results))
		for _, v := range res.Results {
			out = append(out, Track{VideoID: v.VideoID, Title: v.Title, Author: v.Channel, Duration: v.Duration})
		}
		return out, nil
	}
}

// YouTubeMusicSource searches YouTube Music songs.
func YouTubeMusicSource() Source {
	return func(ctx context.Context, query string) ([]Track, error) {
		res, err := ytmusic.TrackSearch(query).Next()
		if err != nil {
			return nil, fmt.Errorf("youtube music search: %w", err)
		}
		out := make([]Track, 0, len(res.Tracks))
		for _, v := range res.Tracks {
			t := Track{VideoID: v.VideoID, Title: v.Title}
			if len(v.Artists) > 0 {
				t.Author = v.Artists[0].Name
			}
			out = append(out, t)
		}
		return out, nil
	}
}

// Searcher merges sources in order, drops duplicates and keeps MaxTracks.
type Searcher struct {
	sources []Source
}

// NewSearcher queries every source concurrently.
func NewSearcher(sources ...Source) *Searcher {
	return &Searcher{sources: sources}
}

// Tracks returns merged results. A failing source is logged and skipped;
// the call fails only when every source failed.
func (s *Searcher) Tracks(ctx context.Context, query string) ([]Track, error) {
	results := make([][]Track, len(s.sources))
	var (
		mu      sync.Mutex
		lastErr error
		failed  int
	)
	var g errgroup.Group
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			tracks, err := src(ctx, query)
			if err != nil {
				utils.WarnLog("Music: source %d failed for %q: %v", i, query, err)
				mu.Lock()
				lastErr = err
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = tracks
			return nil
		})
	}
	_ = g.Wait()
	if len(s.sources) > 0 && failed == len(s.sources) {
		return nil, lastErr
	}

	seen := make(map[string]bool)
	var merged []Track
	for _, tracks := range results {
		for _, t := range tracks {
			if t.VideoID == "" || seen[t.VideoID] {
				continue
			}
			seen[t.VideoID] = true
			merged = append(merged, t)
			if len(merged) == MaxTracks {
				return merged, nil
			}
		}
	}
	return merged, nil
}

// Search implements selection.Catalog. The candidate Ref is the video ID.
func (s *Searcher) Search(ctx context.Context, q types.SearchQuery) ([]types.Candidate, error) {
	tracks, err := s.Tracks(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	out := make([]types.Candidate, 0, len(tracks))
	for i, t := range tracks {
		out = append(out, CandidateFor(t, i+1))
	}
	return out, nil
}

// CandidateFor renders a track as "`3:20` Title | **Author**".
func CandidateFor(t Track, index int) types.Candidate {
	dur := t.Duration
	if dur == "" {
		dur = "--:--"
	}
	c := types.Candidate{
		DisplayIndex: index,
		Title:        utils.Truncate(t.Title, 80),
		Badge:        fmt.Sprintf("`%s`", dur),
		Ref:          t.VideoID,
	}
	if t.Author != "" {
		c.ShortMeta = fmt.Sprintf("**%s**", t.Author)
	}
	return c
}
