package laby

import "time"

// RenameEvent is one entry of a player's rename history. Upstream returns
// histories in reverse-chronological order (most recent rename first).
type RenameEvent struct {
	Name      string    `json:"name"`
	ChangedAt time.Time `json:"changed_at"`
}

// TextureEntry is a raw cape or skin record as returned by the profile
// endpoint. Only previously equipped variants carry active=false.
type TextureEntry struct {
	ImageHash string `json:"image_hash"`
	Active    bool   `json:"active"`
}

type Textures struct {
	Skin []TextureEntry `json:"SKIN"`
	Cape []TextureEntry `json:"CAPE"`
}

type Profile struct {
	UUID        string        `json:"uuid"`
	Name        string        `json:"name"`
	NameHistory []RenameEvent `json:"name_history"`
	Textures    Textures      `json:"textures"`
}

// SearchAccount is one account returned by the profile search endpoint,
// carrying the live name and the full rename history.
type SearchAccount struct {
	UUID    string        `json:"uuid"`
	Name    string        `json:"name"`
	History []RenameEvent `json:"history"`
}

type Tag struct {
	Tag       string `json:"tag"`
	VoteScore int    `json:"vote_score"`
}

// UpcomingName is a name scheduled to become claimable again.
type UpcomingName struct {
	Name          string    `json:"name"`
	AvailableFrom time.Time `json:"available_from"`
	OG            bool      `json:"og"`
}
