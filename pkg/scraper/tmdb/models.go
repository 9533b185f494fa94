// YANFOE Core
// Copyright (c) 2026 The YANFOE Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of YANFOE Core.
//
// YANFOE Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YANFOE Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YANFOE Core.  If not, see <http://www.gnu.org/licenses/>.

package tmdb

// SearchResponse is the body of /search/movie and /search/tv.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Page         int            `json:"page"`
	TotalResults int            `json:"total_results"`
}

// SearchResult covers both movie and tv hits: movies use Title and
// ReleaseDate, shows use Name and FirstAirDate.
type SearchResult struct {
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	ID           int    `json:"id"`
}

type named struct {
	Name string `json:"name"`
}

// CastMember is one credits.cast entry.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is one credits.crew entry.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// ImageEntry is one images.posters or images.backdrops entry.
type ImageEntry struct {
	FilePath string `json:"file_path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Credits is the appended credits object.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// ImageSet is the appended images object.
type ImageSet struct {
	Posters   []ImageEntry `json:"posters"`
	Backdrops []ImageEntry `json:"backdrops"`
}

// Details is the body of /movie/{id} and /tv/{id} with credits and images
// appended.
type Details struct {
	Title               string   `json:"title"`
	Name                string   `json:"name"`
	OriginalTitle       string   `json:"original_title"`
	OriginalName        string   `json:"original_name"`
	Overview            string   `json:"overview"`
	Tagline             string   `json:"tagline"`
	ReleaseDate         string   `json:"release_date"`
	FirstAirDate        string   `json:"first_air_date"`
	PosterPath          string   `json:"poster_path"`
	BackdropPath        string   `json:"backdrop_path"`
	Genres              []named  `json:"genres"`
	ProductionCountries []named  `json:"production_countries"`
	ProductionCompanies []named  `json:"production_companies"`
	CreatedBy           []named  `json:"created_by"`
	EpisodeRunTime      []int    `json:"episode_run_time"`
	Images              ImageSet `json:"images"`
	Credits             Credits  `json:"credits"`
	VoteAverage         float64  `json:"vote_average"`
	Runtime             int      `json:"runtime"`
	ID                  int      `json:"id"`
}

func (d *Details) title() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

func (d *Details) originalTitle() string {
	if d.OriginalTitle != "" {
		return d.OriginalTitle
	}
	return d.OriginalName
}

func (d *Details) date() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

func (d *Details) runtime() int {
	if d.Runtime > 0 {
		return d.Runtime
	}
	if len(d.EpisodeRunTime) > 0 {
		return d.EpisodeRunTime[0]
	}
	return 0
}

func names(in []named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}
