package blitzr

import "net/url"

// Filters are sent as filters[<name>] parameters. Empty fields are omitted.

// ArtistFilters narrows artist searches and similar-artist lists. Only
// Location applies to similar artists.
type ArtistFilters struct {
	Location string
	Tag      string
	Type     ArtistType
}

func (f ArtistFilters) apply(v url.Values) {
	setFilter(v, "location", f.Location)
	setFilter(v, "tag", f.Tag)
	setFilter(v, "type", string(f.Type))
}

// LabelFilters narrows label searches and similar-label lists.
type LabelFilters struct {
	Location string
	Tag      string
}

func (f LabelFilters) apply(v url.Values) {
	setFilter(v, "location", f.Location)
	setFilter(v, "tag", f.Tag)
}

// ReleaseFilters narrows release searches.
type ReleaseFilters struct {
	Artist     string
	ArtistUUID string
	Label      string
	LabelUUID  string
	Tag        string
	Year       string
	Location   string
}

func (f ReleaseFilters) apply(v url.Values) {
	setFilter(v, "artist", f.Artist)
	setFilter(v, "artist_uuid", f.ArtistUUID)
	setFilter(v, "label", f.Label)
	setFilter(v, "label_uuid", f.LabelUUID)
	setFilter(v, "tag", f.Tag)
	setFilter(v, "year", f.Year)
	setFilter(v, "location", f.Location)
}

// TrackFilters narrows track searches.
type TrackFilters struct {
	Artist      string
	ArtistUUID  string
	Release     string
	ReleaseUUID string
	Location    string
	Year        string
}

func (f TrackFilters) apply(v url.Values) {
	setFilter(v, "artist", f.Artist)
	setFilter(v, "artist_uuid", f.ArtistUUID)
	setFilter(v, "release", f.Release)
	setFilter(v, "release_uuid", f.ReleaseUUID)
	setFilter(v, "location", f.Location)
	setFilter(v, "year", f.Year)
}

func setFilter(v url.Values, name, value string) {
	if value != "" {
		v.Set("filters["+name+"]", value)
	}
}
