package test

import (
	"context"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"roost/dal"
	"roost/dto"
	"roost/logic"
	"roost/shared"
	"roost/test/mocks"
	"testing"
)

type ingesterHarness struct {
	cfg          *shared.Config
	mockLogger   *mocks.MockILogger
	mockMetrics  *mocks.MockIMetrics
	mockBackfill *mocks.MockIBackfill
	store        *fakeStore
}

// The ingester test wires a real reconciler and feed attacher over the fake
// store; only the outbound backfill is mocked.
func setupIngesterTest(t *testing.T) (*gomock.Controller, *ingesterHarness, logic.IIngester) {

	ctrl := gomock.NewController(t)
	h := &ingesterHarness{
		cfg: &shared.Config{
			LookupChunkSize: 100,
			LookupParallel:  4,
			Accounts: []*shared.Account{
				{Key: "main", Platform: "twitter", Domain: testDomain, UserID: "1"},
				{Key: "fedi", Platform: "mastodon", Domain: mastoDomain, UserID: "9"},
			},
		},
		mockLogger:   mocks.NewMockILogger(ctrl),
		mockMetrics:  mocks.NewMockIMetrics(ctrl),
		mockBackfill: mocks.NewMockIBackfill(ctrl),
		store:        newFakeStore(),
	}
	stubLogger(h.mockLogger)
	stubMetrics(h.mockMetrics)

	rec := logic.NewReconciler(h.mockLogger, h.mockMetrics)
	fa := logic.NewFeedAttacher(h.mockLogger, h.mockMetrics)
	ing := logic.NewIngester(h.cfg, h.mockLogger, h.store, rec, fa, h.mockBackfill, h.mockMetrics)
	return ctrl, h, ing
}

func Test_Ingest_V1Page(t *testing.T) {

	ctrl, h, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	page := &logic.TimelinePage{
		AccountKey:  "main",
		Kind:        "home",
		NetworkDate: t1,
		TwitterV1: []*dto.TweetV1{
			makeTweetV1("100", "7", "one", t0),
			makeTweetV1("200", "8", "two", t1),
		},
	}
	res, err := ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)
	assert.Equal(t, 2, res.Persisted)
	assert.Equal(t, 2, res.NewStatuses)
	assert.Equal(t, 2, res.NewAuthors)
	assert.Equal(t, 0, res.Skipped)

	statuses, total, err := h.store.GetFeedStatuses("main", "home", 40, 0)
	assert.Nil(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, len(statuses))
	assert.Equal(t, 1, len(h.store.anchorEntries("main", "home")))
}

func Test_Ingest_V2PageTriggersBackfill(t *testing.T) {

	ctrl, h, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	tweet := makeTweetV2("100", "7", "hello", t0)
	page := &logic.TimelinePage{
		AccountKey:  "main",
		Kind:        "home",
		NetworkDate: t1,
		TwitterV2: &dto.TimelineV2{
			Data:     []*dto.TweetV2{tweet},
			Includes: &dto.IncludesV2{Users: []*dto.UserV2{makeUserV2("7")}},
		},
	}

	h.mockBackfill.EXPECT().
		Run(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *shared.Account, targets []*logic.BackfillTarget) error {
			assert.Equal(t, 1, len(targets))
			assert.Equal(t, "100", targets[0].StatusId)
			// The record handle must resolve in the backfill's own scope
			status, _ := h.store.ResolveStatus(targets[0].Ref)
			assert.NotNil(t, status)
			return nil
		})

	res, err := ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)
	assert.Equal(t, 1, res.Persisted)
}

func Test_Ingest_HomeAuthorsMarkedFollowed(t *testing.T) {

	ctrl, h, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	me, _ := h.store.InsertUser(&dal.UserProps{
		Platform: "twitter", Domain: testDomain, UserId: "1",
	}, t0)

	page := &logic.TimelinePage{
		AccountKey:  "main",
		Kind:        "home",
		NetworkDate: t1,
		TwitterV1:   []*dto.TweetV1{makeTweetV1("100", "7", "post", t0)},
	}
	_, err := ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)

	author, _ := h.store.FetchUserByUserId("twitter", testDomain, "7")
	assert.True(t, h.store.following[author.Id][me.Id])

	// A list page makes no claim about follow state
	page = &logic.TimelinePage{
		AccountKey:  "main",
		Kind:        "list",
		NetworkDate: t1,
		TwitterV1:   []*dto.TweetV1{makeTweetV1("200", "8", "post", t0)},
	}
	_, err = ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)
	other, _ := h.store.FetchUserByUserId("twitter", testDomain, "8")
	assert.Equal(t, 0, len(h.store.following[other.Id]))
}

func Test_Ingest_BrokenStatusSkipped(t *testing.T) {

	ctrl, h, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	orphan := makeTweetV1("100", "7", "orphan", t0)
	orphan.User = nil
	page := &logic.TimelinePage{
		AccountKey:  "main",
		Kind:        "home",
		NetworkDate: t1,
		TwitterV1:   []*dto.TweetV1{orphan, makeTweetV1("200", "8", "fine", t0)},
	}
	res, err := ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)
	assert.Equal(t, 1, res.Persisted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, len(h.store.statuses))
}

func Test_Ingest_UnknownAccountRejected(t *testing.T) {

	ctrl, _, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	page := &logic.TimelinePage{AccountKey: "nope", Kind: "home",
		TwitterV1: []*dto.TweetV1{makeTweetV1("100", "7", "post", t0)}}
	_, err := ing.IngestTimelinePage(context.Background(), page)
	assert.NotNil(t, err)
}

func Test_Ingest_EmptyPayloadRejected(t *testing.T) {

	ctrl, _, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	page := &logic.TimelinePage{AccountKey: "main", Kind: "home"}
	_, err := ing.IngestTimelinePage(context.Background(), page)
	assert.NotNil(t, err)
}

func Test_Ingest_MastodonPage(t *testing.T) {

	ctrl, h, ing := setupIngesterTest(t)
	defer ctrl.Finish()

	boost := makeStatusMasto("200", "8", "", t1)
	boost.Reblog = makeStatusMasto("100", "7", "<p>original</p>", t0)
	page := &logic.TimelinePage{
		AccountKey:  "fedi",
		Kind:        "home",
		NetworkDate: t1,
		Mastodon:    []*dto.StatusMasto{boost},
	}
	res, err := ing.IngestTimelinePage(context.Background(), page)
	assert.Nil(t, err)
	assert.Equal(t, 1, res.Persisted)
	// The reblog target was created too, but only the boost is in the feed
	assert.Equal(t, 2, len(h.store.statuses))
	_, total, _ := h.store.GetFeedStatuses("fedi", "home", 40, 0)
	assert.Equal(t, 1, total)
}
