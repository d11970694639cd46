package dal

import (
	"database/sql"
	"time"
)

// Status is one canonical, deduplicated status record. StatusId is the remote
// identifier, unique per (platform, domain). UpdatedAt is the last network
// date that touched the record; merges of scalar fields only happen when the
// incoming network date is strictly newer.
type Status struct {
	Id             int64
	Platform       string
	Domain         string
	StatusId       string
	Text           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReplyCount     int64
	RepostCount    int64
	QuoteCount     int64
	LikeCount      int64
	Language       string
	Source         string
	ConversationId string
	ReplySettings  string
	ReplyToUserId  string
	AuthorId       int64
	RepostOfId     sql.NullInt64
	QuoteOfId      sql.NullInt64
	ReplyToId      sql.NullInt64
}

// StatusRef is an opaque handle that survives across write scopes. Resolve it
// inside a scope to get a live record; never hold a *Status across scopes.
type StatusRef struct {
	Id int64
}

func (s *Status) Ref() StatusRef {
	return StatusRef{Id: s.Id}
}

// StatusProps is the scalar property set produced by the per-platform
// mappers. It carries no relationships.
type StatusProps struct {
	Platform       string
	Domain         string
	StatusId       string
	Text           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReplyCount     int64
	RepostCount    int64
	QuoteCount     int64
	LikeCount      int64
	Language       string
	Source         string
	ConversationId string
	ReplySettings  string
	ReplyToUserId  string
	Urls           []string
}

// StatusRel wires a new status into the graph. AuthorId is mandatory; the
// three status pointers are optional.
type StatusRel struct {
	AuthorId   int64
	RepostOfId *int64
	QuoteOfId  *int64
	ReplyToId  *int64
}

type User struct {
	Id             int64
	Platform       string
	Domain         string
	UserId         string
	Handle         string
	Name           string
	Protected      bool
	Verified       bool
	AvatarUrl      string
	BannerUrl      string
	Bio            string
	FollowersCount int64
	FollowingCount int64
	ListedCount    int64
	UpdatedAt      time.Time
}

type UserProps struct {
	Platform       string
	Domain         string
	UserId         string
	Handle         string
	Name           string
	Protected      bool
	Verified       bool
	AvatarUrl      string
	BannerUrl      string
	Bio            string
	FollowersCount int64
	FollowingCount int64
	ListedCount    int64
}

type Poll struct {
	Id        int64
	StatusId  int64 // owning status, local ID
	PollId    string
	ExpiresAt sql.NullTime
	Expired   bool
	Voted     bool
	UpdatedAt time.Time
	Options   []*PollOption
}

type PollOption struct {
	Position   int
	Label      string
	VotesCount int64
}

type PollProps struct {
	PollId    string
	ExpiresAt *time.Time
	Expired   bool
	Voted     bool
}

type PollOptionProps struct {
	Position   int
	Label      string
	VotesCount int64
}

type Attachment struct {
	Id         int64
	StatusId   int64
	Position   int
	Kind       string // photo | video | animated_gif
	AssetUrl   string
	PreviewUrl string
	Width      int64
	Height     int64
	DurationMs int64
	AltText    string
}

type AttachmentProps struct {
	Kind       string
	AssetUrl   string
	PreviewUrl string
	Width      int64
	Height     int64
	DurationMs int64
	AltText    string
}

type Place struct {
	Id          int64
	StatusId    int64
	PlaceId     string
	FullName    string
	Name        string
	Country     string
	CountryCode string
}

type PlaceProps struct {
	PlaceId     string
	FullName    string
	Name        string
	Country     string
	CountryCode string
}

// FeedEntry attaches one status to the ordered timeline of one local account.
// HasMore marks the paging anchor: more history remains below this entry.
type FeedEntry struct {
	Id         int64
	AccountKey string
	Kind       string // home | local | federated | list
	StatusId   int64
	HasMore    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
