package dto

import (
	"strings"
	"time"
)

// Twitter v1.1 payload shapes, as decoded from JSON.
// Statuses embed their author and their retweeted/quoted targets inline.

const timeFormatV1 = "Mon Jan 02 15:04:05 -0700 2006"

// TimeV1 parses the legacy "Wed Oct 10 20:19:24 +0000 2018" timestamp format.
type TimeV1 struct {
	time.Time
}

func (t *TimeV1) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timeFormatV1, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

type TweetV1 struct {
	IdStr                string              `json:"id_str"`
	Text                 *string             `json:"text"`
	FullText             *string             `json:"full_text"`
	CreatedAt            TimeV1              `json:"created_at"`
	User                 *UserV1             `json:"user"`
	FavoriteCount        *int64              `json:"favorite_count"`
	RetweetCount         *int64              `json:"retweet_count"`
	Lang                 *string             `json:"lang"`
	Source               *string             `json:"source"` // HTML anchor, e.g. <a href="...">Twidere for iOS</a>
	InReplyToStatusIdStr *string             `json:"in_reply_to_status_id_str"`
	InReplyToUserIdStr   *string             `json:"in_reply_to_user_id_str"`
	RetweetedStatus      *TweetV1            `json:"retweeted_status"`
	QuotedStatusIdStr    *string             `json:"quoted_status_id_str"`
	QuotedStatus         *TweetV1            `json:"quoted_status"`
	Entities             *TweetEntitiesV1    `json:"entities"`
	ExtendedEntities     *ExtendedEntitiesV1 `json:"extended_entities"`
	Place                *PlaceV1            `json:"place"`
	Favorited            *bool               `json:"favorited"`
	Retweeted            *bool               `json:"retweeted"`
}

type UserV1 struct {
	IdStr                string  `json:"id_str"`
	Name                 string  `json:"name"`
	ScreenName           string  `json:"screen_name"`
	Protected            *bool   `json:"protected"`
	Verified             *bool   `json:"verified"`
	Description          *string `json:"description"`
	ProfileImageUrlHttps *string `json:"profile_image_url_https"`
	ProfileBannerUrl     *string `json:"profile_banner_url"`
	FollowersCount       *int64  `json:"followers_count"`
	FriendsCount         *int64  `json:"friends_count"`
	ListedCount          *int64  `json:"listed_count"`
}

type TweetEntitiesV1 struct {
	Urls []*UrlEntityV1 `json:"urls"`
}

type UrlEntityV1 struct {
	Url         string  `json:"url"`
	ExpandedUrl *string `json:"expanded_url"`
}

type ExtendedEntitiesV1 struct {
	Media []*MediaV1 `json:"media"`
}

type MediaV1 struct {
	IdStr         string        `json:"id_str"`
	Type          *string       `json:"type"` // photo | video | animated_gif
	MediaUrlHttps *string       `json:"media_url_https"`
	Sizes         *MediaSizesV1 `json:"sizes"`
	VideoInfo     *VideoInfoV1  `json:"video_info"`
	ExtAltText    *string       `json:"ext_alt_text"`
}

type MediaSizesV1 struct {
	Large *MediaSizeV1 `json:"large"`
}

type MediaSizeV1 struct {
	W *int64 `json:"w"`
	H *int64 `json:"h"`
}

type VideoInfoV1 struct {
	DurationMillis *int64            `json:"duration_millis"`
	Variants       []*VideoVariantV1 `json:"variants"`
}

type VideoVariantV1 struct {
	Bitrate     *int64  `json:"bitrate"`
	ContentType *string `json:"content_type"`
	Url         *string `json:"url"`
}

type PlaceV1 struct {
	Id          string  `json:"id"`
	FullName    *string `json:"full_name"`
	Name        *string `json:"name"`
	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`
}
