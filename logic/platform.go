package logic

import (
	"roost/dal"
	"time"
)

type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformMastodon Platform = "mastodon"
)

// RawStatus is the platform-independent view of one decoded status entity.
// Implementations must be total: a malformed field maps to a zero value,
// never to a panic.
type RawStatus interface {
	StatusId() string
	AuthorId() string
	Props(networkDate time.Time) *dal.StatusProps
	Refs() StatusRefs
	Media() []*dal.AttachmentProps
	Place() *dal.PlaceProps
	Poll() *RawPoll
	// MeState reports like/repost flags for the requesting identity where
	// the payload carries them inline; nil fields mean "not in this payload".
	MeState() MeState
}

type RawUser interface {
	UserId() string
	Props() *dal.UserProps
}

// StatusRefs holds the remote IDs of the statuses a status points at. Empty
// string means no such relation.
type StatusRefs struct {
	ReplyToId  string
	RepostOfId string
	QuoteOfId  string
}

type RawPoll struct {
	Props   *dal.PollProps
	Options []*dal.PollOptionProps
}

type MeState struct {
	Liked    *bool
	Reposted *bool
}

// MergePolicy captures per-platform caution rules applied during merges.
type MergePolicy struct {
	// Twitter v2 media omits video asset URLs. When set, incoming video/GIF
	// attachment sets only overwrite an empty stored set.
	GuardAnimatedMedia bool
}

// Batch is the dictionary content of one decoded response: the primary
// statuses plus every included or embedded entity, keyed by remote ID.
// It bounds the depth of recursive relationship resolution.
type Batch struct {
	Platform    Platform
	Domain      string
	NetworkDate time.Time
	Policy      MergePolicy
	Statuses    map[string]RawStatus
	Users       map[string]RawUser
	Order       []string // primary statuses, in response order
}

func newBatch(platform Platform, domain string, networkDate time.Time, policy MergePolicy) *Batch {
	return &Batch{
		Platform:    platform,
		Domain:      domain,
		NetworkDate: networkDate,
		Policy:      policy,
		Statuses:    map[string]RawStatus{},
		Users:       map[string]RawUser{},
	}
}

func (b *Batch) addStatus(raw RawStatus, primary bool) {
	id := raw.StatusId()
	if id == "" {
		return
	}
	if _, exists := b.Statuses[id]; !exists {
		b.Statuses[id] = raw
	}
	if primary {
		b.Order = append(b.Order, id)
	}
}

func (b *Batch) addUser(raw RawUser) {
	id := raw.UserId()
	if id == "" {
		return
	}
	if _, exists := b.Users[id]; !exists {
		b.Users[id] = raw
	}
}

func isAnimatedKind(kind string) bool {
	return kind == "video" || kind == "animated_gif"
}

func containsAnimatedMedia(media []*dal.AttachmentProps) bool {
	for _, m := range media {
		if isAnimatedKind(m.Kind) {
			return true
		}
	}
	return false
}
