package dto

import (
	"time"
)

// Twitter v2 payload shapes. Statuses reference other entities by ID; the
// referenced objects travel in the "includes" section of the response.

type TimelineV2 struct {
	Data     []*TweetV2  `json:"data"`
	Includes *IncludesV2 `json:"includes"`
	Meta     *MetaV2     `json:"meta"`
}

// LookupV2 is the shape of the bulk status lookup response (/2/tweets?ids=).
type LookupV2 struct {
	Data     []*TweetV2  `json:"data"`
	Includes *IncludesV2 `json:"includes"`
}

type IncludesV2 struct {
	Tweets []*TweetV2 `json:"tweets"`
	Users  []*UserV2  `json:"users"`
	Media  []*MediaV2 `json:"media"`
	Places []*PlaceV2 `json:"places"`
	Polls  []*PollV2  `json:"polls"`
}

type MetaV2 struct {
	ResultCount int     `json:"result_count"`
	NextToken   *string `json:"next_token"`
}

type TweetV2 struct {
	Id               string               `json:"id"`
	Text             string               `json:"text"`
	AuthorId         *string              `json:"author_id"`
	CreatedAt        *time.Time           `json:"created_at"`
	ConversationId   *string              `json:"conversation_id"`
	InReplyToUserId  *string              `json:"in_reply_to_user_id"`
	Lang             *string              `json:"lang"`
	Source           *string              `json:"source"` // plain text in v2
	ReplySettings    *string              `json:"reply_settings"`
	PublicMetrics    *TweetMetricsV2      `json:"public_metrics"`
	ReferencedTweets []*ReferencedTweetV2 `json:"referenced_tweets"`
	Attachments      *TweetAttachmentsV2  `json:"attachments"`
	Geo              *TweetGeoV2          `json:"geo"`
	Entities         *TweetEntitiesV2     `json:"entities"`
}

type TweetMetricsV2 struct {
	RetweetCount int64 `json:"retweet_count"`
	ReplyCount   int64 `json:"reply_count"`
	LikeCount    int64 `json:"like_count"`
	QuoteCount   int64 `json:"quote_count"`
}

const (
	RefTypeRepliedTo = "replied_to"
	RefTypeQuoted    = "quoted"
	RefTypeRetweeted = "retweeted"
)

type ReferencedTweetV2 struct {
	Type string `json:"type"` // replied_to | quoted | retweeted
	Id   string `json:"id"`
}

type TweetAttachmentsV2 struct {
	MediaKeys []string `json:"media_keys"`
	PollIds   []string `json:"poll_ids"`
}

type TweetGeoV2 struct {
	PlaceId *string `json:"place_id"`
}

type TweetEntitiesV2 struct {
	Urls []*UrlEntityV2 `json:"urls"`
}

type UrlEntityV2 struct {
	Url         string  `json:"url"`
	ExpandedUrl *string `json:"expanded_url"`
}

type UserV2 struct {
	Id              string         `json:"id"`
	Name            string         `json:"name"`
	Username        string         `json:"username"`
	Protected       *bool          `json:"protected"`
	Verified        *bool          `json:"verified"`
	Description     *string        `json:"description"`
	ProfileImageUrl *string        `json:"profile_image_url"`
	PublicMetrics   *UserMetricsV2 `json:"public_metrics"`
}

type UserMetricsV2 struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	ListedCount    int64 `json:"listed_count"`
}

type MediaV2 struct {
	MediaKey        string  `json:"media_key"`
	Type            string  `json:"type"` // photo | video | animated_gif
	Url             *string `json:"url"`
	PreviewImageUrl *string `json:"preview_image_url"`
	Width           *int64  `json:"width"`
	Height          *int64  `json:"height"`
	DurationMs      *int64  `json:"duration_ms"`
	AltText         *string `json:"alt_text"`
}

type PlaceV2 struct {
	Id          string  `json:"id"`
	FullName    *string `json:"full_name"`
	Name        *string `json:"name"`
	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`
}

type PollV2 struct {
	Id           string          `json:"id"`
	Options      []*PollOptionV2 `json:"options"`
	VotingStatus *string         `json:"voting_status"` // open | closed
	EndDatetime  *time.Time      `json:"end_datetime"`
}

type PollOptionV2 struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Votes    int64  `json:"votes"`
}
