package logic

import (
	"roost/dal"
	"roost/dto"
	"time"
)

// Twitter v1.1 adapter. Statuses embed author, retweet and quote targets
// inline, so the batch dictionary is built by walking each tweet's tree.

func BatchFromTwitterV1(domain string, tweets []*dto.TweetV1, networkDate time.Time) *Batch {
	batch := newBatch(PlatformTwitter, domain, networkDate, MergePolicy{})
	for _, t := range tweets {
		registerTweetV1(batch, t, true)
	}
	return batch
}

func registerTweetV1(batch *Batch, t *dto.TweetV1, primary bool) {
	if t == nil || t.IdStr == "" {
		return
	}
	batch.addStatus(&v1Status{t: t}, primary)
	if t.User != nil {
		batch.addUser(&v1User{u: t.User})
	}
	registerTweetV1(batch, t.RetweetedStatus, false)
	registerTweetV1(batch, t.QuotedStatus, false)
}

type v1Status struct {
	t *dto.TweetV1
}

func (s *v1Status) StatusId() string {
	return s.t.IdStr
}

func (s *v1Status) AuthorId() string {
	if s.t.User == nil {
		return ""
	}
	return s.t.User.IdStr
}

func (s *v1Status) Props(networkDate time.Time) *dal.StatusProps {
	text := strVal(s.t.Text)
	if s.t.FullText != nil {
		text = *s.t.FullText
	}
	var urls []string
	if s.t.Entities != nil {
		for _, u := range s.t.Entities.Urls {
			if u.ExpandedUrl != nil && *u.ExpandedUrl != "" {
				urls = append(urls, *u.ExpandedUrl)
			} else if u.Url != "" {
				urls = append(urls, u.Url)
			}
		}
	}
	return &dal.StatusProps{
		Platform:      string(PlatformTwitter),
		Domain:        "", // filled by the reconciler from the batch
		StatusId:      s.t.IdStr,
		Text:          text,
		CreatedAt:     s.t.CreatedAt.Time,
		UpdatedAt:     networkDate,
		LikeCount:     i64Val(s.t.FavoriteCount),
		RepostCount:   i64Val(s.t.RetweetCount),
		Language:      strVal(s.t.Lang),
		Source:        plainTextFromHTML(strVal(s.t.Source)),
		ReplyToUserId: strVal(s.t.InReplyToUserIdStr),
		Urls:          urls,
	}
}

func (s *v1Status) Refs() StatusRefs {
	refs := StatusRefs{
		ReplyToId: strVal(s.t.InReplyToStatusIdStr),
	}
	if s.t.RetweetedStatus != nil {
		refs.RepostOfId = s.t.RetweetedStatus.IdStr
	}
	if s.t.QuotedStatusIdStr != nil {
		refs.QuoteOfId = *s.t.QuotedStatusIdStr
	} else if s.t.QuotedStatus != nil {
		refs.QuoteOfId = s.t.QuotedStatus.IdStr
	}
	return refs
}

func (s *v1Status) Media() []*dal.AttachmentProps {
	if s.t.ExtendedEntities == nil {
		return nil
	}
	var res []*dal.AttachmentProps
	for _, m := range s.t.ExtendedEntities.Media {
		props := mediaPropsV1(m)
		if props != nil {
			res = append(res, props)
		}
	}
	return res
}

func mediaPropsV1(m *dto.MediaV1) *dal.AttachmentProps {
	kind := strVal(m.Type)
	if kind != "photo" && kind != "video" && kind != "animated_gif" {
		return nil
	}
	props := dal.AttachmentProps{
		Kind:    kind,
		AltText: strVal(m.ExtAltText),
	}
	if m.Sizes != nil && m.Sizes.Large != nil {
		props.Width = i64Val(m.Sizes.Large.W)
		props.Height = i64Val(m.Sizes.Large.H)
	}
	switch kind {
	case "photo":
		props.AssetUrl = strVal(m.MediaUrlHttps)
	default:
		// Highest-bitrate variant carries the playable asset
		props.PreviewUrl = strVal(m.MediaUrlHttps)
		if m.VideoInfo != nil {
			props.DurationMs = i64Val(m.VideoInfo.DurationMillis)
			var best *dto.VideoVariantV1
			for _, v := range m.VideoInfo.Variants {
				if best == nil || i64Val(v.Bitrate) > i64Val(best.Bitrate) {
					best = v
				}
			}
			if best != nil {
				props.AssetUrl = strVal(best.Url)
			}
		}
	}
	return &props
}

func (s *v1Status) Place() *dal.PlaceProps {
	p := s.t.Place
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

func (s *v1Status) Poll() *RawPoll {
	// v1 payloads carry no poll data
	return nil
}

func (s *v1Status) MeState() MeState {
	return MeState{
		Liked:    s.t.Favorited,
		Reposted: s.t.Retweeted,
	}
}

type v1User struct {
	u *dto.UserV1
}

func (u *v1User) UserId() string {
	return u.u.IdStr
}

func (u *v1User) Props() *dal.UserProps {
	return &dal.UserProps{
		Platform:       string(PlatformTwitter),
		UserId:         u.u.IdStr,
		Handle:         u.u.ScreenName,
		Name:           u.u.Name,
		Protected:      boolVal(u.u.Protected),
		Verified:       boolVal(u.u.Verified),
		AvatarUrl:      strVal(u.u.ProfileImageUrlHttps),
		BannerUrl:      strVal(u.u.ProfileBannerUrl),
		Bio:            strVal(u.u.Description),
		FollowersCount: i64Val(u.u.FollowersCount),
		FollowingCount: i64Val(u.u.FriendsCount),
		ListedCount:    i64Val(u.u.ListedCount),
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func i64Val(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

func boolVal(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
