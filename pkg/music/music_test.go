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

package music

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kurozora/kurozora-bot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(tracks ...Track) Source {
	return func(context.Context, string) ([]Track, error) { return tracks, nil }
}

func failingSource(err error) Source {
	return func(context.Context, string) ([]Track, error) { return nil, err }
}

func TestSearcherMergesAndDedupes(t *testing.T) {
	yt := staticSource(
		Track{VideoID: "a", Title: "Unravel", Author: "TK", Duration: "4:00"},
		Track{VideoID: "b", Title: "Gurenge", Author: "LiSA", Duration: "3:55"},
	)
	ytm := staticSource(
		Track{VideoID: "b", Title: "Gurenge (dup)"},
		Track{VideoID: "c", Title: "Silhouette", Author: "KANA-BOON"},
		Track{VideoID: "", Title: "no id"},
	)

	got, err := NewSearcher(yt, ytm).Tracks(context.Background(), "anime op")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].VideoID, got[1].VideoID, got[2].VideoID})
	assert.Equal(t, "Gurenge", got[1].Title)
}

func TestSearcherCapsAtMaxTracks(t *testing.T) {
	var many []Track
	for i := 0; i < 25; i++ {
		many = append(many, Track{VideoID: fmt.Sprintf("v%d", i), Title: "t"})
	}
	cands, err := NewSearcher(staticSource(many...)).Search(context.Background(), types.NewSearchQuery("x", types.CategoryShow, 10))
	require.NoError(t, err)
	assert.Len(t, cands, MaxTracks)
	assert.Equal(t, 10, cands[9].DisplayIndex)
}

func TestSearcherPartialAndTotalFailure(t *testing.T) {
	boom := errors.New("boom")

	got, err := NewSearcher(failingSource(boom), staticSource(Track{VideoID: "z"})).Tracks(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = NewSearcher(failingSource(boom), failingSource(boom)).Tracks(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestCandidateFor(t *testing.T) {
	c := CandidateFor(Track{VideoID: "id", Title: "Blue Bird", Author: "Ikimono-gakari", Duration: "3:37"}, 2)
	assert.Equal(t, types.Candidate{DisplayIndex: 2, Title: "Blue Bird", Badge: "`3:37`", ShortMeta: "**Ikimono-gakari**", Ref: "id"}, c)

	bare := CandidateFor(Track{VideoID: "id", Title: "x"}, 1)
	assert.Equal(t, "`--:--`", bare.Badge)
	assert.Empty(t, bare.ShortMeta)
}

func TestSpotifyCachesToken(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			tokenCalls.Add(1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "id", user)
			assert.Equal(t, "secret", pass)
			fmt.Fprint(w, `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`)
		case "/v1/search":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			if r.URL.Query().Get("q") == "nothing" {
				fmt.Fprint(w, `{"tracks":{"items":[]}}`)
				return
			}
			fmt.Fprint(w, `{"tracks":{"items":[{"external_urls":{"spotify":"https://open.spotify.com/track/xyz"}}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewSpotifyClient("id", "secret", srv.Client())
	c.tokenURL = srv.URL + "/api/token"
	c.apiURL = srv.URL

	link, err := c.FirstTrackURL(context.Background(), "Unravel")
	require.NoError(t, err)
	assert.Equal(t, "https://open.spotify.com/track/xyz", link)

	link, err = c.FirstTrackURL(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, link)
	assert.Equal(t, int32(1), tokenCalls.Load())

	assert.Nil(t, NewSpotifyClient("", "secret", nil))
}

func TestLinkResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/catalog/us/search", r.URL.Path)
		assert.Equal(t, "Unravel", r.URL.Query().Get("term"))
		fmt.Fprint(w, `{"results":{"songs":{"data":[{"attributes":{"url":"https://music.apple.com/us/song/1"}}]}}}`)
	}))
	defer srv.Close()

	apple := NewAppleMusicClient("dev-token", srv.Client())
	apple.apiURL = srv.URL

	r := &LinkResolver{Query: "Unravel", Apple: apple}
	msg, err := r.Resolve(context.Background(), types.Candidate{Ref: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "📺 | https://youtu.be/abc\n🍎 | https://music.apple.com/us/song/1", msg.Content)

	_, err = (&LinkResolver{}).Resolve(context.Background(), types.Candidate{})
	assert.Error(t, err)
}
