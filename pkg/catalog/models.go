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

package catalog

// Image is a poster, banner or profile picture.
type Image struct {
	URL             string `json:"url"`
	BackgroundColor string `json:"backgroundColor"`
}

// Stats carries the community rating.
type Stats struct {
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   FlexInt `json:"ratingCount"`
}

// Attributes is the union of the show, literature, game and character
// attributes the bot displays.
type Attributes struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	Synopsis  string `json:"synopsis"`
	Copyright string `json:"copyright"`

	Poster  *Image `json:"poster"`
	Banner  *Image `json:"banner"`
	Profile *Image `json:"profile"`

	Status   Label `json:"status"`
	Type     Label `json:"type"`
	Source   Label `json:"source"`
	TVRating Label `json:"tvRating"`

	Genres []string `json:"genres"`
	Themes []string `json:"themes"`

	AirSeason         string `json:"airSeason"`
	PublicationSeason string `json:"publicationSeason"`
	AirDay            string `json:"airDay"`
	PublicationDay    string `json:"publicationDay"`
	AirTime           string `json:"airTime"`
	PublicationTime   string `json:"publicationTime"`

	StartedAt   FlexInt `json:"startedAt"`
	PublishedAt FlexInt `json:"publishedAt"`
	EndedAt     FlexInt `json:"endedAt"`

	SeasonCount  FlexInt `json:"seasonCount"`
	EpisodeCount FlexInt `json:"episodeCount"`
	VolumeCount  FlexInt `json:"volumeCount"`
	ChapterCount FlexInt `json:"chapterCount"`
	PageCount    FlexInt `json:"pageCount"`
	EditionCount FlexInt `json:"editionCount"`

	Duration      string `json:"duration"`
	DurationTotal string `json:"durationTotal"`

	Stats *Stats `json:"stats"`

	Debut            FlexString `json:"debut"`
	Birthdate        FlexString `json:"birthdate"`
	Age              FlexString `json:"age"`
	AstrologicalSign FlexString `json:"astrologicalSign"`
	Bust             FlexString `json:"bust"`
	Waist            FlexString `json:"waist"`
	Hip              FlexString `json:"hip"`
	Height           FlexString `json:"height"`
	Weight           FlexString `json:"weight"`
	BloodType        FlexString `json:"bloodType"`
	FavoriteFood     FlexString `json:"favoriteFood"`
}

// Entry is one resource returned by a detail endpoint.
type Entry struct {
	ID         FlexString `json:"id"`
	Type       string     `json:"type"`
	Href       string     `json:"href"`
	Attributes Attributes `json:"attributes"`
}

// DisplayName is the title for media and the name for characters.
func (e *Entry) DisplayName() string {
	if e.Attributes.Title != "" {
		return e.Attributes.Title
	}
	return e.Attributes.Name
}

// Season returns the air or publication season.
func (a *Attributes) Season() string {
	if a.AirSeason != "" {
		return a.AirSeason
	}
	return a.PublicationSeason
}
