package test

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"roost/dal"
	"roost/dto"
	"roost/logic"
	"roost/shared"
	"roost/test/mocks"
	"testing"
)

type backfillHarness struct {
	cfg        *shared.Config
	mockLogger *mocks.MockILogger
	mockLookup *mocks.MockILookupClient
	store      *fakeStore
}

func setupBackfillTest(t *testing.T) (*gomock.Controller, *backfillHarness, logic.IBackfill) {

	ctrl := gomock.NewController(t)
	h := &backfillHarness{
		cfg: &shared.Config{
			LookupChunkSize: 2,
			LookupParallel:  2,
		},
		mockLogger: mocks.NewMockILogger(ctrl),
		mockLookup: mocks.NewMockILookupClient(ctrl),
		store:      newFakeStore(),
	}
	mockMetrics := mocks.NewMockIMetrics(ctrl)
	stubLogger(h.mockLogger)
	stubMetrics(mockMetrics)

	bf := logic.NewBackfill(h.cfg, h.mockLogger, h.store, h.mockLookup, mockMetrics)
	return ctrl, h, bf
}

func backfillTargets(statuses ...*dal.Status) []*logic.BackfillTarget {
	var res []*logic.BackfillTarget
	for _, status := range statuses {
		res = append(res, &logic.BackfillTarget{StatusId: status.StatusId, Ref: status.Ref()})
	}
	return res
}

func Test_Backfill_FailedChunkSkipped(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	// Four IDs, chunk size two: the failing first chunk must not prevent the
	// second chunk from patching its statuses
	s100 := seedStatus(h.store, "100", t0)
	s200 := seedStatus(h.store, "200", t0)
	s300 := seedStatus(h.store, "300", t0)
	target := seedStatus(h.store, "400", t0)

	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Eq(testAcct), gomock.Eq([]string{"100", "200"})).
		Return(nil, errors.New("rate limited"))

	patched := makeTweetV1("400", "7", "status 400", t0)
	patched.Favorited = ptrBool(true)
	goodBatch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{patched}, t1)
	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Eq(testAcct), gomock.Eq([]string{"300", "400"})).
		Return([]*logic.Batch{goodBatch}, nil)

	me, _ := h.store.InsertUser(&dal.UserProps{
		Platform: "twitter", Domain: testDomain, UserId: "1",
	}, t0)

	err := bf.Run(context.Background(), testAcct, backfillTargets(s100, s200, s300, target))
	assert.Nil(t, err)
	assert.True(t, h.store.likes[target.Id][me.Id])
}

func Test_Backfill_FillsEmptyAndAnimatedMedia(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	// Stored video attachment without a playable asset, as left by a v2 ingest
	target := seedStatus(h.store, "100", t0)
	_ = h.store.ReplaceAttachments(target.Id, []*dal.AttachmentProps{
		{Kind: "video", PreviewUrl: "https://img.example.com/p.jpg"},
	})

	fixed := makeTweetV1("100", "7", "status 100", t0)
	fixed.ExtendedEntities = &dto.ExtendedEntitiesV1{Media: []*dto.MediaV1{
		{
			IdStr: "m1", Type: ptrStr("video"),
			MediaUrlHttps: ptrStr("https://img.example.com/p.jpg"),
			VideoInfo: &dto.VideoInfoV1{
				Variants: []*dto.VideoVariantV1{
					{Bitrate: ptrI64(320000), Url: ptrStr("https://video.example.com/low.mp4")},
					{Bitrate: ptrI64(832000), Url: ptrStr("https://video.example.com/high.mp4")},
				},
			},
		},
	}}
	batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{fixed}, t1)
	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Any(), gomock.Eq([]string{"100"})).
		Return([]*logic.Batch{batch}, nil)

	err := bf.Run(context.Background(), testAcct, backfillTargets(target))
	assert.Nil(t, err)

	atts, _ := h.store.GetAttachments(target.Id)
	assert.Equal(t, 1, len(atts))
	assert.Equal(t, "https://video.example.com/high.mp4", atts[0].AssetUrl)
}

func Test_Backfill_AssetlessV2MediaDoesNotClobber(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	target := seedStatus(h.store, "100", t0)
	_ = h.store.ReplaceAttachments(target.Id, []*dal.AttachmentProps{
		{Kind: "video", PreviewUrl: "https://img.example.com/p.jpg"},
	})

	// The Twitter lookup answers with a v1 and a v2 batch for the same status.
	// The v1 media carries the playable asset; the v2 media never does.
	fixed := makeTweetV1("100", "7", "status 100", t0)
	fixed.ExtendedEntities = &dto.ExtendedEntitiesV1{Media: []*dto.MediaV1{
		{
			IdStr: "m1", Type: ptrStr("video"),
			MediaUrlHttps: ptrStr("https://img.example.com/p.jpg"),
			VideoInfo: &dto.VideoInfoV1{
				Variants: []*dto.VideoVariantV1{
					{Bitrate: ptrI64(832000), Url: ptrStr("https://video.example.com/m1.mp4")},
				},
			},
		},
	}}
	v1Batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{fixed}, t1)

	tweet := makeTweetV2("100", "7", "status 100", t0)
	tweet.Attachments = &dto.TweetAttachmentsV2{MediaKeys: []string{"k1"}}
	includes := &dto.IncludesV2{
		Users: []*dto.UserV2{makeUserV2("7")},
		Media: []*dto.MediaV2{
			{MediaKey: "k1", Type: "video", PreviewImageUrl: ptrStr("https://img.example.com/p.jpg")},
		},
	}
	v2Batch := logic.BatchFromTwitterV2(testDomain, []*dto.TweetV2{tweet}, includes, t1)

	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Any(), gomock.Eq([]string{"100"})).
		Return([]*logic.Batch{v1Batch, v2Batch}, nil)

	err := bf.Run(context.Background(), testAcct, backfillTargets(target))
	assert.Nil(t, err)

	// The v1 fix survives: the asset-less v2 entry only fills an empty set
	atts, _ := h.store.GetAttachments(target.Id)
	assert.Equal(t, 1, len(atts))
	assert.Equal(t, "https://video.example.com/m1.mp4", atts[0].AssetUrl)
}

func Test_Backfill_PhotoDoesNotClobberStored(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	target := seedStatus(h.store, "100", t0)
	_ = h.store.ReplaceAttachments(target.Id, []*dal.AttachmentProps{
		{Kind: "photo", AssetUrl: "https://img.example.com/stored.jpg"},
	})

	incoming := makeTweetV1("100", "7", "status 100", t0)
	incoming.ExtendedEntities = &dto.ExtendedEntitiesV1{Media: []*dto.MediaV1{
		{IdStr: "m1", Type: ptrStr("photo"), MediaUrlHttps: ptrStr("https://img.example.com/other.jpg")},
	}}
	batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{incoming}, t1)
	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Any(), gomock.Eq([]string{"100"})).
		Return([]*logic.Batch{batch}, nil)

	err := bf.Run(context.Background(), testAcct, backfillTargets(target))
	assert.Nil(t, err)

	// Non-animated incoming media over a non-empty stored set is a no-op
	atts, _ := h.store.GetAttachments(target.Id)
	assert.Equal(t, "https://img.example.com/stored.jpg", atts[0].AssetUrl)
}

func Test_Backfill_AttachesPollAndReplySettings(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	target := seedStatus(h.store, "100", t0)

	tweet := makeTweetV2("100", "7", "status 100", t0)
	tweet.ReplySettings = ptrStr("following")
	tweet.Attachments = &dto.TweetAttachmentsV2{PollIds: []string{"p1"}}
	includes := &dto.IncludesV2{
		Users: []*dto.UserV2{makeUserV2("7")},
		Polls: []*dto.PollV2{{
			Id:           "p1",
			VotingStatus: ptrStr("open"),
			Options: []*dto.PollOptionV2{
				{Position: 1, Label: "yes", Votes: 4},
				{Position: 2, Label: "no", Votes: 2},
			},
		}},
	}
	batch := logic.BatchFromTwitterV2(testDomain, []*dto.TweetV2{tweet}, includes, t1)
	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Any(), gomock.Eq([]string{"100"})).
		Return([]*logic.Batch{batch}, nil)

	err := bf.Run(context.Background(), testAcct, backfillTargets(target))
	assert.Nil(t, err)

	stored, _ := h.store.GetStatusByStatusId("twitter", testDomain, "100")
	assert.Equal(t, "following", stored.ReplySettings)
	poll := h.store.polls[target.Id]
	assert.NotNil(t, poll)
	assert.Equal(t, "p1", poll.props.PollId)
	assert.Equal(t, 2, len(poll.options))
}

func Test_Backfill_DeletedStatusIgnored(t *testing.T) {

	ctrl, h, bf := setupBackfillTest(t)
	defer ctrl.Finish()

	batch := logic.BatchFromTwitterV1(testDomain, []*dto.TweetV1{makeTweetV1("999", "7", "?", t0)}, t1)
	h.mockLookup.EXPECT().
		LookupStatuses(gomock.Any(), gomock.Any(), gomock.Eq([]string{"999"})).
		Return([]*logic.Batch{batch}, nil)

	// The ref no longer resolves: the status was deleted after the primary
	// reconciliation, so the lookup result is dropped silently
	stale := []*logic.BackfillTarget{{StatusId: "999", Ref: dal.StatusRef{Id: 77}}}
	err := bf.Run(context.Background(), testAcct, stale)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(h.store.statuses))
}
