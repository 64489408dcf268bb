package blitzr

// ReleaseType filters releases by edition.
type ReleaseType string

const (
	ReleaseTypeOfficial   ReleaseType = "official"
	ReleaseTypeUnofficial ReleaseType = "unofficial"
	ReleaseTypeAll        ReleaseType = "all"
)

// ReleaseFormat filters releases by format.
type ReleaseFormat string

const (
	ReleaseFormatAlbum  ReleaseFormat = "album"
	ReleaseFormatSingle ReleaseFormat = "single"
	ReleaseFormatLive   ReleaseFormat = "live"
	ReleaseFormatAll    ReleaseFormat = "all"
)

// ArtistType separates solo artists from groups.
type ArtistType string

const (
	ArtistTypePerson ArtistType = "person"
	ArtistTypeGroup  ArtistType = "group"
)

// EntityType is the kind of a search result.
type EntityType string

const (
	EntityArtist  EntityType = "artist"
	EntityLabel   EntityType = "label"
	EntityRelease EntityType = "release"
	EntityTrack   EntityType = "track"
)

// EntityTypes lists every searchable entity.
var EntityTypes = []EntityType{EntityArtist, EntityLabel, EntityRelease, EntityTrack}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityArtist, EntityLabel, EntityRelease, EntityTrack:
		return true
	}
	return false
}

// ArtistExtra requests additional artist fields.
type ArtistExtra string

const (
	ArtistExtraAliases      ArtistExtra = "aliases"
	ArtistExtraWebsites     ArtistExtra = "websites"
	ArtistExtraBiography    ArtistExtra = "biography"
	ArtistExtraLastReleases ArtistExtra = "last_releases"
	ArtistExtraNextEvents   ArtistExtra = "next_events"
	ArtistExtraRelations    ArtistExtra = "relations"
)

// LabelExtra requests additional label fields.
type LabelExtra string

const (
	LabelExtraBiography    LabelExtra = "biography"
	LabelExtraWebsites     LabelExtra = "websites"
	LabelExtraArtists      LabelExtra = "artists"
	LabelExtraLastReleases LabelExtra = "last_releases"
	LabelExtraSubLabels    LabelExtra = "sub_labels"
)

// LabelArtistsOrder sorts the artists of a label.
type LabelArtistsOrder string

const (
	LabelArtistsOrderAlpha      LabelArtistsOrder = "alpha"
	LabelArtistsOrderPopularity LabelArtistsOrder = "popularity"
)

// ProductType is a shop product category.
type ProductType string

const (
	ProductCD    ProductType = "cd"
	ProductLP    ProductType = "lp"
	ProductMP3   ProductType = "mp3"
	ProductMerch ProductType = "merch"
)

// ServiceName identifies a third-party catalog for harmonia lookups.
type ServiceName string

const (
	ServiceBeatport    ServiceName = "beatport"
	ServiceDeezer      ServiceName = "deezer"
	ServiceDiscogs     ServiceName = "discogs"
	ServiceITunes      ServiceName = "itunes"
	ServiceMusicBrainz ServiceName = "musicbrainz"
	ServiceSpotify     ServiceName = "spotify"
)

// SourceName identifies a track source.
type SourceName string

const (
	SourceBandcamp   SourceName = "bandcamp"
	SourceDeezer     SourceName = "deezer"
	SourceSoundcloud SourceName = "soundcloud"
	SourceSpotify    SourceName = "spotify"
	SourceYoutube    SourceName = "youtube"
)
