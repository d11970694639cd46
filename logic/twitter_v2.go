package logic

import (
	"roost/dal"
	"roost/dto"
	"time"
)

// Twitter v2 adapter. Statuses reference entities by ID; the referenced
// objects arrive in the response includes, so every status shares one
// dictionary of media/places/polls keyed by their remote identifiers.

func BatchFromTwitterV2(domain string, data []*dto.TweetV2, includes *dto.IncludesV2, networkDate time.Time) *Batch {
	batch := newBatch(PlatformTwitter, domain, networkDate, MergePolicy{GuardAnimatedMedia: true})
	dict := newDictV2(includes)

	for _, t := range data {
		if t == nil {
			continue
		}
		batch.addStatus(&v2Status{t: t, dict: dict}, true)
	}
	if includes != nil {
		for _, t := range includes.Tweets {
			if t == nil {
				continue
			}
			batch.addStatus(&v2Status{t: t, dict: dict}, false)
		}
		for _, u := range includes.Users {
			if u == nil {
				continue
			}
			batch.addUser(&v2User{u: u})
		}
	}
	return batch
}

type dictV2 struct {
	media  map[string]*dto.MediaV2
	places map[string]*dto.PlaceV2
	polls  map[string]*dto.PollV2
}

func newDictV2(includes *dto.IncludesV2) *dictV2 {
	dict := &dictV2{
		media:  map[string]*dto.MediaV2{},
		places: map[string]*dto.PlaceV2{},
		polls:  map[string]*dto.PollV2{},
	}
	if includes == nil {
		return dict
	}
	for _, m := range includes.Media {
		if m != nil {
			dict.media[m.MediaKey] = m
		}
	}
	for _, p := range includes.Places {
		if p != nil {
			dict.places[p.Id] = p
		}
	}
	for _, p := range includes.Polls {
		if p != nil {
			dict.polls[p.Id] = p
		}
	}
	return dict
}

type v2Status struct {
	t    *dto.TweetV2
	dict *dictV2
}

func (s *v2Status) StatusId() string {
	return s.t.Id
}

func (s *v2Status) AuthorId() string {
	return strVal(s.t.AuthorId)
}

func (s *v2Status) Props(networkDate time.Time) *dal.StatusProps {
	props := dal.StatusProps{
		Platform:       string(PlatformTwitter),
		StatusId:       s.t.Id,
		Text:           s.t.Text,
		UpdatedAt:      networkDate,
		Language:       strVal(s.t.Lang),
		Source:         strVal(s.t.Source), // plain text in v2, no unescaping needed
		ConversationId: strVal(s.t.ConversationId),
		ReplySettings:  strVal(s.t.ReplySettings),
		ReplyToUserId:  strVal(s.t.InReplyToUserId),
	}
	if s.t.CreatedAt != nil {
		props.CreatedAt = *s.t.CreatedAt
	}
	if m := s.t.PublicMetrics; m != nil {
		props.ReplyCount = m.ReplyCount
		props.RepostCount = m.RetweetCount
		props.QuoteCount = m.QuoteCount
		props.LikeCount = m.LikeCount
	}
	if s.t.Entities != nil {
		for _, u := range s.t.Entities.Urls {
			if u.ExpandedUrl != nil && *u.ExpandedUrl != "" {
				props.Urls = append(props.Urls, *u.ExpandedUrl)
			} else if u.Url != "" {
				props.Urls = append(props.Urls, u.Url)
			}
		}
	}
	return &props
}

// Refs scans the flat referenced-tweets list. First match wins per relation
// type; later duplicates of the same type are ignored.
func (s *v2Status) Refs() StatusRefs {
	var refs StatusRefs
	for _, ref := range s.t.ReferencedTweets {
		if ref == nil {
			continue
		}
		switch ref.Type {
		case dto.RefTypeRepliedTo:
			if refs.ReplyToId == "" {
				refs.ReplyToId = ref.Id
			}
		case dto.RefTypeRetweeted:
			if refs.RepostOfId == "" {
				refs.RepostOfId = ref.Id
			}
		case dto.RefTypeQuoted:
			if refs.QuoteOfId == "" {
				refs.QuoteOfId = ref.Id
			}
		}
	}
	return refs
}

func (s *v2Status) Media() []*dal.AttachmentProps {
	if s.t.Attachments == nil {
		return nil
	}
	var res []*dal.AttachmentProps
	for _, key := range s.t.Attachments.MediaKeys {
		m := s.dict.media[key]
		if m == nil {
			continue
		}
		if m.Type != "photo" && m.Type != "video" && m.Type != "animated_gif" {
			continue
		}
		res = append(res, &dal.AttachmentProps{
			Kind:       m.Type,
			AssetUrl:   strVal(m.Url), // empty for video/GIF; the v1 backfill fills it
			PreviewUrl: strVal(m.PreviewImageUrl),
			Width:      i64Val(m.Width),
			Height:     i64Val(m.Height),
			DurationMs: i64Val(m.DurationMs),
			AltText:    strVal(m.AltText),
		})
	}
	return res
}

func (s *v2Status) Place() *dal.PlaceProps {
	if s.t.Geo == nil || s.t.Geo.PlaceId == nil {
		return nil
	}
	p := s.dict.places[*s.t.Geo.PlaceId]
	if p == nil || strVal(p.FullName) == "" {
		return nil
	}
	return &dal.PlaceProps{
		PlaceId:     p.Id,
		FullName:    strVal(p.FullName),
		Name:        strVal(p.Name),
		Country:     strVal(p.Country),
		CountryCode: strVal(p.CountryCode),
	}
}

func (s *v2Status) Poll() *RawPoll {
	if s.t.Attachments == nil || len(s.t.Attachments.PollIds) == 0 {
		return nil
	}
	p := s.dict.polls[s.t.Attachments.PollIds[0]]
	if p == nil {
		return nil
	}
	res := RawPoll{
		Props: &dal.PollProps{
			PollId:    p.Id,
			ExpiresAt: p.EndDatetime,
			Expired:   strVal(p.VotingStatus) == "closed",
		},
	}
	for _, opt := range p.Options {
		if opt == nil {
			continue
		}
		res.Options = append(res.Options, &dal.PollOptionProps{
			Position:   opt.Position,
			Label:      opt.Label,
			VotesCount: opt.Votes,
		})
	}
	return &res
}

func (s *v2Status) MeState() MeState {
	// v2 list payloads carry no per-identity flags; the v1 backfill sets them
	return MeState{}
}

type v2User struct {
	u *dto.UserV2
}

func (u *v2User) UserId() string {
	return u.u.Id
}

func (u *v2User) Props() *dal.UserProps {
	props := dal.UserProps{
		Platform:  string(PlatformTwitter),
		UserId:    u.u.Id,
		Handle:    u.u.Username,
		Name:      u.u.Name,
		Protected: boolVal(u.u.Protected),
		Verified:  boolVal(u.u.Verified),
		AvatarUrl: strVal(u.u.ProfileImageUrl),
		Bio:       strVal(u.u.Description),
	}
	if m := u.u.PublicMetrics; m != nil {
		props.FollowersCount = m.FollowersCount
		props.FollowingCount = m.FollowingCount
		props.ListedCount = m.ListedCount
	}
	return &props
}
