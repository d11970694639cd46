package test

import (
	"fmt"
	"roost/dal"
	"time"
)

// fakeStore is an in-memory stand-in for the SQLite repo. It implements both
// dal.IRepo and dal.IWriteScope so logic tests can run full reconciliations
// without a database file. Write scopes are not transactional here; tests
// that exercise rollback semantics belong at the dal level.
type fakeStore struct {
	nextId      int64
	statuses    map[int64]*dal.Status
	users       map[int64]*dal.User
	attachments map[int64][]*dal.Attachment
	places      map[int64]*dal.Place
	polls       map[int64]*fakePoll
	links       map[int64][]string
	likes       map[int64]map[int64]bool
	reposts     map[int64]map[int64]bool
	following   map[int64]map[int64]bool
	feedEntries map[int64]*dal.FeedEntry

	// Call counters for cache effectiveness checks
	userFetches   int
	userUpdates   int
	statusFetches int
}

type fakePoll struct {
	props   *dal.PollProps
	options []*dal.PollOptionProps
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextId:      1,
		statuses:    map[int64]*dal.Status{},
		users:       map[int64]*dal.User{},
		attachments: map[int64][]*dal.Attachment{},
		places:      map[int64]*dal.Place{},
		polls:       map[int64]*fakePoll{},
		links:       map[int64][]string{},
		likes:       map[int64]map[int64]bool{},
		reposts:     map[int64]map[int64]bool{},
		following:   map[int64]map[int64]bool{},
		feedEntries: map[int64]*dal.FeedEntry{},
	}
}

func (fs *fakeStore) takeId() int64 {
	res := fs.nextId
	fs.nextId += 1
	return res
}

// ==================== IRepo ====================

func (fs *fakeStore) InitUpdateDb() {}

func (fs *fakeStore) WithWriteScope(body func(scope dal.IWriteScope) error) error {
	return body(fs)
}

func (fs *fakeStore) GetStatusCount() (int, error) {
	return len(fs.statuses), nil
}

func (fs *fakeStore) GetStatusByStatusId(platform, domain, statusId string) (*dal.Status, error) {
	return fs.FetchStatusByStatusId(platform, domain, statusId)
}

func (fs *fakeStore) GetFeedStatuses(accountKey, kind string, limit, offset int) ([]*dal.Status, int, error) {
	var res []*dal.Status
	for _, fe := range fs.feedEntries {
		if fe.AccountKey == accountKey && fe.Kind == kind {
			res = append(res, fs.statuses[fe.StatusId])
		}
	}
	return res, len(res), nil
}

// ==================== IWriteScope ====================

func (fs *fakeStore) FetchStatusByStatusId(platform, domain, statusId string) (*dal.Status, error) {
	fs.statusFetches += 1
	for _, s := range fs.statuses {
		if s.Platform == platform && s.Domain == domain && s.StatusId == statusId {
			return s, nil
		}
	}
	return nil, nil
}

func (fs *fakeStore) ResolveStatus(ref dal.StatusRef) (*dal.Status, error) {
	return fs.statuses[ref.Id], nil
}

func (fs *fakeStore) InsertStatus(props *dal.StatusProps, rel *dal.StatusRel) (*dal.Status, error) {
	status := &dal.Status{
		Id:             fs.takeId(),
		Platform:       props.Platform,
		Domain:         props.Domain,
		StatusId:       props.StatusId,
		Text:           props.Text,
		CreatedAt:      props.CreatedAt,
		UpdatedAt:      props.UpdatedAt,
		ReplyCount:     clamp(props.ReplyCount),
		RepostCount:    clamp(props.RepostCount),
		QuoteCount:     clamp(props.QuoteCount),
		LikeCount:      clamp(props.LikeCount),
		Language:       props.Language,
		Source:         props.Source,
		ConversationId: props.ConversationId,
		ReplySettings:  props.ReplySettings,
		ReplyToUserId:  props.ReplyToUserId,
		AuthorId:       rel.AuthorId,
	}
	if rel.RepostOfId != nil {
		status.RepostOfId.Valid = true
		status.RepostOfId.Int64 = *rel.RepostOfId
	}
	if rel.QuoteOfId != nil {
		status.QuoteOfId.Valid = true
		status.QuoteOfId.Int64 = *rel.QuoteOfId
	}
	if rel.ReplyToId != nil {
		status.ReplyToId.Valid = true
		status.ReplyToId.Int64 = *rel.ReplyToId
	}
	fs.statuses[status.Id] = status
	_ = fs.ReplaceLinks(status.Id, props.Urls)
	return status, nil
}

func (fs *fakeStore) UpdateStatus(status *dal.Status) error {
	if _, exists := fs.statuses[status.Id]; !exists {
		return fmt.Errorf("no status with id %d", status.Id)
	}
	cp := *status
	cp.ReplyCount = clamp(cp.ReplyCount)
	cp.RepostCount = clamp(cp.RepostCount)
	cp.QuoteCount = clamp(cp.QuoteCount)
	cp.LikeCount = clamp(cp.LikeCount)
	fs.statuses[status.Id] = &cp
	return nil
}

func (fs *fakeStore) FetchUserByUserId(platform, domain, userId string) (*dal.User, error) {
	fs.userFetches += 1
	for _, u := range fs.users {
		if u.Platform == platform && u.Domain == domain && u.UserId == userId {
			return u, nil
		}
	}
	return nil, nil
}

func (fs *fakeStore) InsertUser(props *dal.UserProps, networkDate time.Time) (*dal.User, error) {
	user := &dal.User{
		Id:             fs.takeId(),
		Platform:       props.Platform,
		Domain:         props.Domain,
		UserId:         props.UserId,
		Handle:         props.Handle,
		Name:           props.Name,
		Protected:      props.Protected,
		Verified:       props.Verified,
		AvatarUrl:      props.AvatarUrl,
		BannerUrl:      props.BannerUrl,
		Bio:            props.Bio,
		FollowersCount: clamp(props.FollowersCount),
		FollowingCount: clamp(props.FollowingCount),
		ListedCount:    clamp(props.ListedCount),
		UpdatedAt:      networkDate,
	}
	fs.users[user.Id] = user
	return user, nil
}

func (fs *fakeStore) UpdateUser(user *dal.User) error {
	fs.userUpdates += 1
	if _, exists := fs.users[user.Id]; !exists {
		return fmt.Errorf("no user with id %d", user.Id)
	}
	cp := *user
	fs.users[user.Id] = &cp
	return nil
}

func (fs *fakeStore) UpsertPoll(statusDbId int64, props *dal.PollProps, options []*dal.PollOptionProps, networkDate time.Time) error {
	fs.polls[statusDbId] = &fakePoll{props: props, options: options}
	return nil
}

func (fs *fakeStore) GetAttachments(statusDbId int64) ([]*dal.Attachment, error) {
	return fs.attachments[statusDbId], nil
}

func (fs *fakeStore) ReplaceAttachments(statusDbId int64, media []*dal.AttachmentProps) error {
	var res []*dal.Attachment
	for i, m := range media {
		res = append(res, &dal.Attachment{
			Id:         fs.takeId(),
			StatusId:   statusDbId,
			Position:   i,
			Kind:       m.Kind,
			AssetUrl:   m.AssetUrl,
			PreviewUrl: m.PreviewUrl,
			Width:      m.Width,
			Height:     m.Height,
			DurationMs: m.DurationMs,
			AltText:    m.AltText,
		})
	}
	fs.attachments[statusDbId] = res
	return nil
}

func (fs *fakeStore) UpsertPlace(statusDbId int64, props *dal.PlaceProps) error {
	fs.places[statusDbId] = &dal.Place{
		StatusId:    statusDbId,
		PlaceId:     props.PlaceId,
		FullName:    props.FullName,
		Name:        props.Name,
		Country:     props.Country,
		CountryCode: props.CountryCode,
	}
	return nil
}

func (fs *fakeStore) ReplaceLinks(statusDbId int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	fs.links[statusDbId] = urls
	return nil
}

func (fs *fakeStore) SetLikedBy(statusDbId, userDbId int64, liked bool) error {
	return setMembership(fs.likes, statusDbId, userDbId, liked)
}

func (fs *fakeStore) SetRepostedBy(statusDbId, userDbId int64, reposted bool) error {
	return setMembership(fs.reposts, statusDbId, userDbId, reposted)
}

func (fs *fakeStore) SetFollowedBy(userDbId, byUserDbId int64, following bool) error {
	return setMembership(fs.following, userDbId, byUserDbId, following)
}

func setMembership(sets map[int64]map[int64]bool, statusDbId, userDbId int64, member bool) error {
	if sets[statusDbId] == nil {
		sets[statusDbId] = map[int64]bool{}
	}
	if member {
		sets[statusDbId][userDbId] = true
	} else {
		delete(sets[statusDbId], userDbId)
	}
	return nil
}

func (fs *fakeStore) GetFeedEntry(accountKey, kind string, statusDbId int64) (*dal.FeedEntry, error) {
	for _, fe := range fs.feedEntries {
		if fe.AccountKey == accountKey && fe.Kind == kind && fe.StatusId == statusDbId {
			return fe, nil
		}
	}
	return nil, nil
}

func (fs *fakeStore) InsertFeedEntry(entry *dal.FeedEntry) (*dal.FeedEntry, error) {
	cp := *entry
	cp.Id = fs.takeId()
	fs.feedEntries[cp.Id] = &cp
	return &cp, nil
}

func (fs *fakeStore) TouchFeedEntry(id int64, updatedAt time.Time) error {
	fe := fs.feedEntries[id]
	if fe == nil {
		return fmt.Errorf("no feed entry with id %d", id)
	}
	fe.UpdatedAt = updatedAt
	return nil
}

func (fs *fakeStore) SetFeedHasMore(id int64, hasMore bool) error {
	fe := fs.feedEntries[id]
	if fe == nil {
		return fmt.Errorf("no feed entry with id %d", id)
	}
	fe.HasMore = hasMore
	return nil
}

func (fs *fakeStore) ClearOtherFeedAnchors(accountKey, kind string, keepId int64) error {
	for _, fe := range fs.feedEntries {
		if fe.AccountKey == accountKey && fe.Kind == kind && fe.Id != keepId {
			fe.HasMore = false
		}
	}
	return nil
}

func (fs *fakeStore) anchorEntries(accountKey, kind string) []*dal.FeedEntry {
	var res []*dal.FeedEntry
	for _, fe := range fs.feedEntries {
		if fe.AccountKey == accountKey && fe.Kind == kind && fe.HasMore {
			res = append(res, fe)
		}
	}
	return res
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
