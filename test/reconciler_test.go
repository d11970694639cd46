package test

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"roost/dal"
	"roost/dto"
	"roost/logic"
	"roost/test/mocks"
	"testing"
	"time"
)

type reconcilerHarness struct {
	mockLogger  *mocks.MockILogger
	mockMetrics *mocks.MockIMetrics
	store       *fakeStore
}

func setupReconcilerTest(t *testing.T) (*gomock.Controller, *reconcilerHarness, logic.IReconciler) {

	ctrl := gomock.NewController(t)
	h := &reconcilerHarness{
		mockLogger:  mocks.NewMockILogger(ctrl),
		mockMetrics: mocks.NewMockIMetrics(ctrl),
		store:       newFakeStore(),
	}
	stubLogger(h.mockLogger)
	stubMetrics(h.mockMetrics)

	rec := logic.NewReconciler(h.mockLogger, h.mockMetrics)
	return ctrl, h, rec
}

func reconcileV1(t *testing.T, h *reconcilerHarness, rec logic.IReconciler,
	tweets []*dto.TweetV1, networkDate time.Time) []*logic.PersistResult {

	batch := logic.BatchFromTwitterV1(testDomain, tweets, networkDate)
	pctx := logic.NewPersistContext(nil, networkDate)
	var results []*logic.PersistResult
	for _, id := range batch.Order {
		res, err := rec.ReconcileStatus(h.store, batch, pctx, id)
		assert.Nil(t, err)
		results = append(results, res)
	}
	return results
}

func Test_CreateThenMerge_TextUpdated(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	results := reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "hello", t0)}, t0)
	assert.True(t, results[0].IsNew)
	firstId := results[0].Status.Id
	assert.Equal(t, "hello", results[0].Status.Text)

	updated := makeTweetV1("100", "7", "hello!", t0)
	updated.FavoriteCount = ptrI64(42)
	results = reconcileV1(t, h, rec, []*dto.TweetV1{updated}, t1)
	assert.False(t, results[0].IsNew)
	assert.Equal(t, firstId, results[0].Status.Id)

	stored, err := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.Nil(t, err)
	assert.Equal(t, "hello!", stored.Text)
	assert.Equal(t, int64(42), stored.LikeCount)
	assert.Equal(t, t1, stored.UpdatedAt)
	assert.Equal(t, 1, len(h.store.statuses))
}

func Test_StaleWrite_Rejected(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "current", t0)}, t1)

	// An older response arriving late must not roll the record back
	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "ancient", t0)}, t0)

	stored, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.Equal(t, "current", stored.Text)
	assert.Equal(t, t1, stored.UpdatedAt)
}

func Test_SameNetworkDate_NoOverwrite(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "first", t1)}, t1)
	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "replay", t1)}, t1)

	// The guard requires a strictly newer network date
	stored, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.Equal(t, "first", stored.Text)
}

func Test_Repost_CreatesTargetFirst(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	rt := makeTweetV1("200", "8", "RT @user7: original", t1)
	rt.RetweetedStatus = makeTweetV1("100", "7", "original", t0)

	results := reconcileV1(t, h, rec, []*dto.TweetV1{rt}, t1)
	assert.True(t, results[0].IsNew)
	assert.Equal(t, 2, len(h.store.statuses))

	original, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.NotNil(t, original)
	assert.True(t, results[0].Status.RepostOfId.Valid)
	assert.Equal(t, original.Id, results[0].Status.RepostOfId.Int64)
	assert.False(t, results[0].Status.QuoteOfId.Valid)
}

func Test_RepostWinsOverQuote(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	// Malformed payload claiming both relations: the quote must be dropped
	rt := makeTweetV1("300", "8", "RT with quote", t1)
	rt.RetweetedStatus = makeTweetV1("100", "7", "retweeted", t0)
	rt.QuotedStatus = makeTweetV1("200", "9", "quoted", t0)

	results := reconcileV1(t, h, rec, []*dto.TweetV1{rt}, t1)
	assert.True(t, results[0].Status.RepostOfId.Valid)
	assert.False(t, results[0].Status.QuoteOfId.Valid)
}

func Test_Quote_Resolved(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	qt := makeTweetV1("300", "8", "look at this", t1)
	qt.QuotedStatus = makeTweetV1("100", "7", "quoted", t0)

	results := reconcileV1(t, h, rec, []*dto.TweetV1{qt}, t1)
	quoted, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.NotNil(t, quoted)
	assert.True(t, results[0].Status.QuoteOfId.Valid)
	assert.Equal(t, quoted.Id, results[0].Status.QuoteOfId.Int64)
}

func Test_ReplyTarget_ResolvedFromStore(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "root", t0)}, t0)

	reply := makeTweetV1("200", "8", "@user7 indeed", t1)
	reply.InReplyToStatusIdStr = ptrStr("100")
	reply.InReplyToUserIdStr = ptrStr("7")

	results := reconcileV1(t, h, rec, []*dto.TweetV1{reply}, t1)
	root, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.True(t, results[0].Status.ReplyToId.Valid)
	assert.Equal(t, root.Id, results[0].Status.ReplyToId.Int64)
	assert.Equal(t, "7", results[0].Status.ReplyToUserId)
}

func Test_UnresolvableReply_RelationUnset(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	// Reply target neither in the batch nor in the store: the status itself
	// still persists, with the relation left empty
	reply := makeTweetV1("200", "8", "@ghost hello?", t1)
	reply.InReplyToStatusIdStr = ptrStr("999")

	results := reconcileV1(t, h, rec, []*dto.TweetV1{reply}, t1)
	assert.True(t, results[0].IsNew)
	assert.False(t, results[0].Status.ReplyToId.Valid)
	assert.Equal(t, 1, len(h.store.statuses))
}

func Test_MissingAuthor_StatusSkipped(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	broken := makeTweetV1("100", "7", "orphan", t0)
	broken.User = nil
	batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{broken, makeTweetV1("200", "8", "fine", t0)}, t0)
	pctx := logic.NewPersistContext(nil, t0)

	_, err := rec.ReconcileStatus(h.store, batch, pctx, "100")
	assert.NotNil(t, err)

	// The neighbor is unaffected
	res, err := rec.ReconcileStatus(h.store, batch, pctx, "200")
	assert.Nil(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, 1, len(h.store.statuses))
}

func Test_IdentityCache_OneFetchPerUser(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	var tweets []*dto.TweetV1
	for i := 0; i < 50; i += 1 {
		tweets = append(tweets, makeTweetV1(fmt.Sprintf("%d", 1000+i), "7", "post", t0))
	}
	batch := logic.BatchFromTwitterV1(testDomain, tweets, t0)
	pctx := logic.NewPersistContext(nil, t0)
	for _, id := range batch.Order {
		_, err := rec.ReconcileStatus(h.store, batch, pctx, id)
		assert.Nil(t, err)
	}

	assert.Equal(t, 50, len(h.store.statuses))
	assert.Equal(t, 1, len(h.store.users))
	// The shared author is fetched from the store exactly once
	assert.Equal(t, 1, h.store.userFetches)
}

func Test_EmptyMedia_DoesNotClearStored(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	withMedia := makeTweetV1("100", "7", "pic", t0)
	withMedia.ExtendedEntities = &dto.ExtendedEntitiesV1{Media: []*dto.MediaV1{
		{IdStr: "m1", Type: ptrStr("photo"), MediaUrlHttps: ptrStr("https://img.example.com/m1.jpg")},
	}}
	results := reconcileV1(t, h, rec, []*dto.TweetV1{withMedia}, t0)
	statusDbId := results[0].Status.Id
	atts, _ := h.store.GetAttachments(statusDbId)
	assert.Equal(t, 1, len(atts))

	// Newer merge without media must leave the attachment in place
	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "pic", t0)}, t1)
	atts, _ = h.store.GetAttachments(statusDbId)
	assert.Equal(t, 1, len(atts))
	assert.Equal(t, "https://img.example.com/m1.jpg", atts[0].AssetUrl)
}

func Test_AnimatedMediaGuard_KeepsStoredAssets(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	// Seed via v1: the stored video has a playable asset URL
	seeded := makeTweetV1("100", "7", "clip", t0)
	seeded.ExtendedEntities = &dto.ExtendedEntitiesV1{Media: []*dto.MediaV1{
		{
			IdStr: "m1", Type: ptrStr("video"),
			MediaUrlHttps: ptrStr("https://img.example.com/m1-preview.jpg"),
			VideoInfo: &dto.VideoInfoV1{
				DurationMillis: ptrI64(5000),
				Variants: []*dto.VideoVariantV1{
					{Bitrate: ptrI64(832000), Url: ptrStr("https://video.example.com/m1.mp4")},
				},
			},
		},
	}}
	results := reconcileV1(t, h, rec, []*dto.TweetV1{seeded}, t0)
	statusDbId := results[0].Status.Id

	// Newer v2 merge: its video media has no asset URL and must not clobber
	tweet := makeTweetV2("100", "7", "clip", t0)
	tweet.Attachments = &dto.TweetAttachmentsV2{MediaKeys: []string{"3_100"}}
	includes := &dto.IncludesV2{
		Users: []*dto.UserV2{makeUserV2("7")},
		Media: []*dto.MediaV2{{MediaKey: "3_100", Type: "video",
			PreviewImageUrl: ptrStr("https://img.example.com/m1-preview.jpg")}},
	}
	batch := logic.BatchFromTwitterV2(testDomain, []*dto.TweetV2{tweet}, includes, t1)
	pctx := logic.NewPersistContext(nil, t1)
	_, err := rec.ReconcileStatus(h.store, batch, pctx, "100")
	assert.Nil(t, err)

	atts, _ := h.store.GetAttachments(statusDbId)
	assert.Equal(t, 1, len(atts))
	assert.Equal(t, "https://video.example.com/m1.mp4", atts[0].AssetUrl)
}

func Test_PollRefreshed_OutsideGuard(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	// Seed via Mastodon with a poll
	seeded := makeStatusMasto("100", "7", "<p>which one?</p>", t0)
	seeded.Poll = &dto.PollMasto{
		Id: "p1", Expired: false,
		Options: []*dto.PollOptionMasto{
			{Title: "red", VotesCount: ptrI64(1)},
			{Title: "blue", VotesCount: ptrI64(2)},
		},
	}
	batch := logic.BatchFromMastodon(mastoDomain, []*dto.StatusMasto{seeded}, t1)
	pctx := logic.NewPersistContext(nil, t1)
	res, err := rec.ReconcileStatus(h.store, batch, pctx, "100")
	assert.Nil(t, err)
	statusDbId := res.Status.Id

	// A stale response still refreshes poll votes, but not the text
	stale := makeStatusMasto("100", "7", "<p>stale text</p>", t0)
	stale.Poll = &dto.PollMasto{
		Id: "p1", Expired: true,
		Options: []*dto.PollOptionMasto{
			{Title: "red", VotesCount: ptrI64(10)},
			{Title: "blue", VotesCount: ptrI64(20)},
		},
	}
	batch = logic.BatchFromMastodon(mastoDomain, []*dto.StatusMasto{stale}, t0)
	pctx = logic.NewPersistContext(nil, t0)
	_, err = rec.ReconcileStatus(h.store, batch, pctx, "100")
	assert.Nil(t, err)

	stored, _ := h.store.GetStatusByStatusId("mastodon", mastoDomain, "100")
	assert.Equal(t, "which one?", stored.Text)
	poll := h.store.polls[statusDbId]
	assert.NotNil(t, poll)
	assert.True(t, poll.props.Expired)
	assert.Equal(t, int64(10), poll.options[0].VotesCount)
}

func Test_Place_AlwaysOverwritten(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	withPlace := makeTweetV1("100", "7", "here", t0)
	withPlace.Place = &dto.PlaceV1{Id: "pl1", FullName: ptrStr("Lisbon, Portugal"),
		Name: ptrStr("Lisbon"), Country: ptrStr("Portugal"), CountryCode: ptrStr("PT")}
	results := reconcileV1(t, h, rec, []*dto.TweetV1{withPlace}, t0)
	statusDbId := results[0].Status.Id

	moved := makeTweetV1("100", "7", "here", t0)
	moved.Place = &dto.PlaceV1{Id: "pl2", FullName: ptrStr("Porto, Portugal"),
		Name: ptrStr("Porto"), Country: ptrStr("Portugal"), CountryCode: ptrStr("PT")}
	reconcileV1(t, h, rec, []*dto.TweetV1{moved}, t1)

	assert.Equal(t, "pl2", h.store.places[statusDbId].PlaceId)
}

func Test_AuthorProfile_MergedPastGuard(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	reconcileV1(t, h, rec, []*dto.TweetV1{makeTweetV1("100", "7", "post", t0)}, t1)

	// Stale status payload: scalar fields stay put, but author counters are
	// not guarded and pick up the fresher profile
	stale := makeTweetV1("100", "7", "old text", t0)
	stale.User.FollowersCount = ptrI64(999)
	reconcileV1(t, h, rec, []*dto.TweetV1{stale}, t0)

	stored, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.Equal(t, "post", stored.Text)
	var author *dal.User
	for _, u := range h.store.users {
		author = u
	}
	assert.Equal(t, int64(999), author.FollowersCount)
}

func Test_MeState_AppliedWithIdentity(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	me, err := h.store.InsertUser(&dal.UserProps{
		Platform: "twitter", Domain: testDomain, UserId: "1", Handle: "me",
	}, t0)
	assert.Nil(t, err)

	liked := makeTweetV1("100", "7", "nice", t0)
	liked.Favorited = ptrBool(true)
	liked.Retweeted = ptrBool(false)

	batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{liked}, t0)
	pctx := logic.NewPersistContext(me, t0)
	res, err := rec.ReconcileStatus(h.store, batch, pctx, "100")
	assert.Nil(t, err)

	assert.True(t, h.store.likes[res.Status.Id][me.Id])
	assert.False(t, h.store.reposts[res.Status.Id][me.Id])
}

func Test_NegativeCounters_ClampedToZero(t *testing.T) {

	ctrl, h, rec := setupReconcilerTest(t)
	defer ctrl.Finish()

	broken := makeTweetV1("100", "7", "post", t0)
	broken.FavoriteCount = ptrI64(-5)
	results := reconcileV1(t, h, rec, []*dto.TweetV1{broken}, t0)
	assert.Equal(t, int64(0), results[0].Status.LikeCount)
}
