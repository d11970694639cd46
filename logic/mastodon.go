package logic

import (
	"roost/dal"
	"roost/dto"
	"time"
)

// Mastodon adapter. Statuses embed their account and reblog target inline;
// content is sanitized HTML that we reduce to plain text for display.

func BatchFromMastodon(domain string, statuses []*dto.StatusMasto, networkDate time.Time) *Batch {
	batch := newBatch(PlatformMastodon, domain, networkDate, MergePolicy{})
	for _, s := range statuses {
		registerStatusMasto(batch, s, true)
	}
	return batch
}

func registerStatusMasto(batch *Batch, s *dto.StatusMasto, primary bool) {
	if s == nil || s.Id == "" {
		return
	}
	batch.addStatus(&mastoStatus{s: s}, primary)
	if s.Account != nil {
		batch.addUser(&mastoUser{a: s.Account})
	}
	registerStatusMasto(batch, s.Reblog, false)
}

type mastoStatus struct {
	s *dto.StatusMasto
}

func (s *mastoStatus) StatusId() string {
	return s.s.Id
}

func (s *mastoStatus) AuthorId() string {
	if s.s.Account == nil {
		return ""
	}
	return s.s.Account.Id
}

func (s *mastoStatus) Props(networkDate time.Time) *dal.StatusProps {
	source := ""
	if s.s.Application != nil {
		source = s.s.Application.Name
	}
	return &dal.StatusProps{
		Platform:      string(PlatformMastodon),
		StatusId:      s.s.Id,
		Text:          plainTextFromHTML(s.s.Content),
		CreatedAt:     s.s.CreatedAt,
		UpdatedAt:     networkDate,
		ReplyCount:    i64Val(s.s.RepliesCount),
		RepostCount:   i64Val(s.s.ReblogsCount),
		LikeCount:     i64Val(s.s.FavouritesCount),
		Language:      strVal(s.s.Language),
		Source:        source,
		ReplyToUserId: strVal(s.s.InReplyToAcctId),
		Urls:          extractLinks(s.s.Content),
	}
}

func (s *mastoStatus) Refs() StatusRefs {
	refs := StatusRefs{
		ReplyToId: strVal(s.s.InReplyToId),
	}
	if s.s.Reblog != nil {
		refs.RepostOfId = s.s.Reblog.Id
	}
	return refs
}

func (s *mastoStatus) Media() []*dal.AttachmentProps {
	var res []*dal.AttachmentProps
	for _, m := range s.s.MediaAttachments {
		if m == nil {
			continue
		}
		kind := ""
		switch m.Type {
		case "image":
			kind = "photo"
		case "video":
			kind = "video"
		case "gifv":
			kind = "animated_gif"
		case "audio":
			kind = "audio"
		default:
			continue
		}
		props := dal.AttachmentProps{
			Kind:       kind,
			AssetUrl:   strVal(m.Url),
			PreviewUrl: strVal(m.PreviewUrl),
			AltText:    strVal(m.Description),
		}
		if m.Meta != nil && m.Meta.Original != nil {
			props.Width = i64Val(m.Meta.Original.Width)
			props.Height = i64Val(m.Meta.Original.Height)
			if m.Meta.Original.Duration != nil {
				props.DurationMs = int64(*m.Meta.Original.Duration * 1000)
			}
		}
		res = append(res, &props)
	}
	return res
}

func (s *mastoStatus) Place() *dal.PlaceProps {
	// Mastodon statuses carry no geo data
	return nil
}

func (s *mastoStatus) Poll() *RawPoll {
	p := s.s.Poll
	if p == nil {
		return nil
	}
	res := RawPoll{
		Props: &dal.PollProps{
			PollId:    p.Id,
			ExpiresAt: p.ExpiresAt,
			Expired:   p.Expired,
			Voted:     boolVal(p.Voted),
		},
	}
	for i, opt := range p.Options {
		if opt == nil {
			continue
		}
		res.Options = append(res.Options, &dal.PollOptionProps{
			Position:   i,
			Label:      opt.Title,
			VotesCount: i64Val(opt.VotesCount),
		})
	}
	return &res
}

func (s *mastoStatus) MeState() MeState {
	return MeState{
		Liked:    s.s.Favourited,
		Reposted: s.s.Reblogged,
	}
}

type mastoUser struct {
	a *dto.AccountMasto
}

func (u *mastoUser) UserId() string {
	return u.a.Id
}

func (u *mastoUser) Props() *dal.UserProps {
	name := u.a.DisplayName
	if name == "" {
		name = u.a.Username
	}
	return &dal.UserProps{
		Platform:       string(PlatformMastodon),
		UserId:         u.a.Id,
		Handle:         u.a.Acct,
		Name:           name,
		Protected:      boolVal(u.a.Locked),
		AvatarUrl:      strVal(u.a.Avatar),
		BannerUrl:      strVal(u.a.Header),
		Bio:            plainTextFromHTML(strVal(u.a.Note)),
		FollowersCount: i64Val(u.a.FollowersCount),
		FollowingCount: i64Val(u.a.FollowingCount),
	}
}
