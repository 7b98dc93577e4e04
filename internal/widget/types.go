package widget

import (
	"slices"
	"strings"
	"time"
)

// Sound is a track as the widget reports it. While the widget is still
// loading, sounds may arrive with only an ID set.
type Sound struct {
	ID                int64              `json:"id,omitempty" yaml:"id,omitempty"`
	Kind              string             `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title             string             `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string             `json:"description,omitempty" yaml:"description,omitempty"`
	Genre             string             `json:"genre,omitempty" yaml:"genre,omitempty"`
	TagList           string             `json:"tag_list,omitempty" yaml:"tag_list,omitempty"`
	ArtworkURL        string             `json:"artwork_url,omitempty" yaml:"artwork_url,omitempty"`
	WaveformURL       string             `json:"waveform_url,omitempty" yaml:"waveform_url,omitempty"`
	PermalinkURL      string             `json:"permalink_url,omitempty" yaml:"permalink_url,omitempty"`
	Permalink         string             `json:"permalink,omitempty" yaml:"permalink,omitempty"`
	URI               string             `json:"uri,omitempty" yaml:"uri,omitempty"`
	URN               string             `json:"urn,omitempty" yaml:"urn,omitempty"`
	DurationMS        int64              `json:"duration,omitempty" yaml:"duration,omitempty"`
	FullDurationMS    int64              `json:"full_duration,omitempty" yaml:"full_duration,omitempty"`
	PlaybackCount     int64              `json:"playback_count,omitempty" yaml:"playback_count,omitempty"`
	LikesCount        int64              `json:"likes_count,omitempty" yaml:"likes_count,omitempty"`
	RepostsCount      int64              `json:"reposts_count,omitempty" yaml:"reposts_count,omitempty"`
	CommentCount      int64              `json:"comment_count,omitempty" yaml:"comment_count,omitempty"`
	DownloadCount     int64              `json:"download_count,omitempty" yaml:"download_count,omitempty"`
	Commentable       bool               `json:"commentable,omitempty" yaml:"commentable,omitempty"`
	Downloadable      bool               `json:"downloadable,omitempty" yaml:"downloadable,omitempty"`
	Streamable        bool               `json:"streamable,omitempty" yaml:"streamable,omitempty"`
	Playable          bool               `json:"playable,omitempty" yaml:"playable,omitempty"`
	Public            bool               `json:"public,omitempty" yaml:"public,omitempty"`
	License           string             `json:"license,omitempty" yaml:"license,omitempty"`
	Sharing           string             `json:"sharing,omitempty" yaml:"sharing,omitempty"`
	State             string             `json:"state,omitempty" yaml:"state,omitempty"`
	Policy            string             `json:"policy,omitempty" yaml:"policy,omitempty"`
	MonetizationModel string             `json:"monetization_model,omitempty" yaml:"monetization_model,omitempty"`
	CreatedAt         string             `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	DisplayDate       string             `json:"display_date,omitempty" yaml:"display_date,omitempty"`
	UserID            int64              `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	User              *User              `json:"user,omitempty" yaml:"user,omitempty"`
	PublisherMetadata *PublisherMetadata `json:"publisher_metadata,omitempty" yaml:"publisher_metadata,omitempty"`
	Media             *Media             `json:"media,omitempty" yaml:"media,omitempty"`
}

// Duration returns the playable length of the sound.
func (s Sound) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// Loaded reports whether the widget has filled in more than the ID.
func (s Sound) Loaded() bool {
	return s.ID != 0 && strings.TrimSpace(s.Title) != ""
}

// Created parses CreatedAt. The widget uses RFC 3339; older payloads use
// "2006/01/02 15:04:05 -0700".
func (s Sound) Created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006/01/02 15:04:05 -0700"} {
		if t, err := time.Parse(layout, s.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Artist prefers the publisher's artist name over the uploader.
func (s Sound) Artist() string {
	if s.PublisherMetadata != nil && strings.TrimSpace(s.PublisherMetadata.Artist) != "" {
		return s.PublisherMetadata.Artist
	}
	if s.User != nil {
		return s.User.Username
	}
	return ""
}

// User is the uploader of a sound.
type User struct {
	ID             int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Kind           string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Username       string  `json:"username,omitempty" yaml:"username,omitempty"`
	FirstName      string  `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName       string  `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FullName       string  `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	AvatarURL      string  `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	Permalink      string  `json:"permalink,omitempty" yaml:"permalink,omitempty"`
	PermalinkURL   string  `json:"permalink_url,omitempty" yaml:"permalink_url,omitempty"`
	URI            string  `json:"uri,omitempty" yaml:"uri,omitempty"`
	URN            string  `json:"urn,omitempty" yaml:"urn,omitempty"`
	City           string  `json:"city,omitempty" yaml:"city,omitempty"`
	CountryCode    string  `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	FollowersCount int64   `json:"followers_count,omitempty" yaml:"followers_count,omitempty"`
	Verified       bool    `json:"verified,omitempty" yaml:"verified,omitempty"`
	Badges         *Badges `json:"badges,omitempty" yaml:"badges,omitempty"`
}

// Badges are the uploader's account badges.
type Badges struct {
	Pro            bool `json:"pro,omitempty" yaml:"pro,omitempty"`
	ProUnlimited   bool `json:"pro_unlimited,omitempty" yaml:"pro_unlimited,omitempty"`
	CreatorMidTier bool `json:"creator_mid_tier,omitempty" yaml:"creator_mid_tier,omitempty"`
	Verified       bool `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// PublisherMetadata carries label-supplied credits.
type PublisherMetadata struct {
	ID            int64  `json:"id,omitempty" yaml:"id,omitempty"`
	URN           string `json:"urn,omitempty" yaml:"urn,omitempty"`
	Artist        string `json:"artist,omitempty" yaml:"artist,omitempty"`
	AlbumTitle    string `json:"album_title,omitempty" yaml:"album_title,omitempty"`
	ContainsMusic bool   `json:"contains_music,omitempty" yaml:"contains_music,omitempty"`
}

// Media lists the available stream encodings.
type Media struct {
	Transcodings []Transcoding `json:"transcodings,omitempty" yaml:"transcodings,omitempty"`
}

// Transcoding is one stream encoding of a sound.
type Transcoding struct {
	URL        string  `json:"url,omitempty" yaml:"url,omitempty"`
	Preset     string  `json:"preset,omitempty" yaml:"preset,omitempty"`
	DurationMS int64   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Snipped    bool    `json:"snipped,omitempty" yaml:"snipped,omitempty"`
	Quality    string  `json:"quality,omitempty" yaml:"quality,omitempty"`
	IsLegacy   bool    `json:"is_legacy_transcoding,omitempty" yaml:"is_legacy_transcoding,omitempty"`
	Format     *Format `json:"format,omitempty" yaml:"format,omitempty"`
}

// Format describes a transcoding's container.
type Format struct {
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	MimeType string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// AudioData accompanies audio events. RelativePosition and LoadProgress are
// fractions of the sound; CurrentPosition is in milliseconds.
type AudioData struct {
	RelativePosition float64 `json:"relativePosition"`
	LoadProgress     float64 `json:"loadProgress"`
	CurrentPosition  float64 `json:"currentPosition"`
}

// Position returns CurrentPosition as a duration.
func (d AudioData) Position() time.Duration {
	return time.Duration(d.CurrentPosition * float64(time.Millisecond))
}

// Event names a widget event.
type Event string

// Audio events carry AudioData.
const (
	EventLoadProgress Event = "loadProgress"
	EventPlayProgress Event = "playProgress"
	EventPlay         Event = "play"
	EventPause        Event = "pause"
	EventFinish       Event = "finish"
	EventSeek         Event = "seek"
)

// UI events carry no data.
const (
	EventReady            Event = "ready"
	EventDownloadClicked  Event = "downloadClicked"
	EventBuyClicked       Event = "buyClicked"
	EventSharePanelOpened Event = "sharePanelOpened"
	EventError            Event = "error"
)

// AudioEvents lists the events that carry AudioData.
var AudioEvents = []Event{EventLoadProgress, EventPlayProgress, EventPlay, EventPause, EventFinish, EventSeek}

// UIEvents lists the data-less events.
var UIEvents = []Event{EventReady, EventDownloadClicked, EventBuyClicked, EventSharePanelOpened, EventError}

// IsAudio reports whether e carries AudioData.
func (e Event) IsAudio() bool {
	return slices.Contains(AudioEvents, e)
}

// Valid reports whether e is a known event name.
func (e Event) Valid() bool {
	return e.IsAudio() || slices.Contains(UIEvents, e)
}
