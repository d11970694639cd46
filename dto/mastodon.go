package dto

import (
	"time"
)

// Mastodon-style payload shapes. Statuses embed their account and reblog
// target inline; content arrives as sanitized HTML.

type StatusMasto struct {
	Id               string        `json:"id"`
	Uri              string        `json:"uri"`
	CreatedAt        time.Time     `json:"created_at"`
	Account          *AccountMasto `json:"account"`
	Content          string        `json:"content"` // HTML
	Language         *string       `json:"language"`
	Visibility       string        `json:"visibility"`
	InReplyToId      *string       `json:"in_reply_to_id"`
	InReplyToAcctId  *string       `json:"in_reply_to_account_id"`
	Reblog           *StatusMasto  `json:"reblog"`
	RepliesCount     *int64        `json:"replies_count"`
	ReblogsCount     *int64        `json:"reblogs_count"`
	FavouritesCount  *int64        `json:"favourites_count"`
	Favourited       *bool         `json:"favourited"`
	Reblogged        *bool         `json:"reblogged"`
	MediaAttachments []*MediaMasto `json:"media_attachments"`
	Poll             *PollMasto    `json:"poll"`
	Application      *AppMasto     `json:"application"`
}

type AccountMasto struct {
	Id             string  `json:"id"`
	Username       string  `json:"username"`
	Acct           string  `json:"acct"`
	DisplayName    string  `json:"display_name"`
	Locked         *bool   `json:"locked"`
	Bot            *bool   `json:"bot"`
	Note           *string `json:"note"` // HTML bio
	Avatar         *string `json:"avatar"`
	Header         *string `json:"header"`
	FollowersCount *int64  `json:"followers_count"`
	FollowingCount *int64  `json:"following_count"`
}

type MediaMasto struct {
	Id          string          `json:"id"`
	Type        string          `json:"type"` // image | video | gifv | audio
	Url         *string         `json:"url"`
	PreviewUrl  *string         `json:"preview_url"`
	Description *string         `json:"description"`
	Meta        *MediaMetaMasto `json:"meta"`
}

type MediaMetaMasto struct {
	Original *MediaSizeMasto `json:"original"`
}

type MediaSizeMasto struct {
	Width    *int64   `json:"width"`
	Height   *int64   `json:"height"`
	Duration *float64 `json:"duration"` // seconds
}

type PollMasto struct {
	Id        string             `json:"id"`
	ExpiresAt *time.Time         `json:"expires_at"`
	Expired   bool               `json:"expired"`
	Voted     *bool              `json:"voted"`
	Options   []*PollOptionMasto `json:"options"`
}

type PollOptionMasto struct {
	Title      string `json:"title"`
	VotesCount *int64 `json:"votes_count"`
}

type AppMasto struct {
	Name string `json:"name"`
}
