package test

import (
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"roost/dal"
	"roost/logic"
	"roost/shared"
	"roost/test/mocks"
	"testing"
	"time"
)

var testAcct = &shared.Account{
	Key:      "main",
	Platform: "twitter",
	Domain:   testDomain,
	UserID:   "1",
}

func setupFeedTest(t *testing.T) (*gomock.Controller, *fakeStore, logic.IFeedAttacher) {

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockILogger(ctrl)
	mockMetrics := mocks.NewMockIMetrics(ctrl)
	stubLogger(mockLogger)
	stubMetrics(mockMetrics)

	fa := logic.NewFeedAttacher(mockLogger, mockMetrics)
	return ctrl, newFakeStore(), fa
}

func seedStatus(store *fakeStore, statusId string, createdAt time.Time) *dal.Status {
	status, err := store.InsertStatus(&dal.StatusProps{
		Platform: "twitter", Domain: testDomain, StatusId: statusId,
		Text: "status " + statusId, CreatedAt: createdAt, UpdatedAt: createdAt,
	}, &dal.StatusRel{AuthorId: 1})
	if err != nil {
		panic(err)
	}
	return status
}

func Test_FirstPage_OldestBecomesAnchor(t *testing.T) {

	ctrl, store, fa := setupFeedTest(t)
	defer ctrl.Finish()

	statuses := []*dal.Status{
		seedStatus(store, "300", t2),
		seedStatus(store, "100", t0),
		seedStatus(store, "200", t1),
	}

	err := fa.AttachPage(store, testAcct, "home", statuses, "", t2)
	assert.Nil(t, err)

	assert.Equal(t, 3, len(store.feedEntries))
	anchors := store.anchorEntries("main", "home")
	assert.Equal(t, 1, len(anchors))
	oldest, _ := store.GetFeedEntry("main", "home", statuses[1].Id)
	assert.True(t, oldest.HasMore)
}

func Test_NewWindow_AnchorMoves(t *testing.T) {

	ctrl, store, fa := setupFeedTest(t)
	defer ctrl.Finish()

	first := seedStatus(store, "200", t1)
	err := fa.AttachPage(store, testAcct, "home", []*dal.Status{first}, "", t1)
	assert.Nil(t, err)

	// An older window arrives later; its oldest status takes over the anchor
	older := seedStatus(store, "100", t0)
	err = fa.AttachPage(store, testAcct, "home", []*dal.Status{older}, "", t2)
	assert.Nil(t, err)

	anchors := store.anchorEntries("main", "home")
	assert.Equal(t, 1, len(anchors))
	assert.Equal(t, older.Id, anchors[0].StatusId)
}

func Test_MaxIdMatch_ClearsAnchor(t *testing.T) {

	ctrl, store, fa := setupFeedTest(t)
	defer ctrl.Finish()

	anchor := seedStatus(store, "100", t0)
	err := fa.AttachPage(store, testAcct, "home", []*dal.Status{anchor}, "", t0)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(store.anchorEntries("main", "home")))

	// Paging request below the anchor came back empty: the gap is closed
	err = fa.AttachPage(store, testAcct, "home", nil, "100", t1)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(store.anchorEntries("main", "home")))
}

func Test_ExistingEntry_OnlyTouched(t *testing.T) {

	ctrl, store, fa := setupFeedTest(t)
	defer ctrl.Finish()

	status := seedStatus(store, "100", t0)
	err := fa.AttachPage(store, testAcct, "home", []*dal.Status{status}, "", t0)
	assert.Nil(t, err)

	// Re-sync of an already attached status must not duplicate the entry,
	// and must not flip has_more back on
	err = fa.AttachPage(store, testAcct, "home", nil, "100", t1)
	assert.Nil(t, err)
	err = fa.AttachPage(store, testAcct, "home", []*dal.Status{status}, "", t2)
	assert.Nil(t, err)

	assert.Equal(t, 1, len(store.feedEntries))
	entry, _ := store.GetFeedEntry("main", "home", status.Id)
	assert.False(t, entry.HasMore)
	assert.Equal(t, t2, entry.UpdatedAt)
}

func Test_FeedKinds_Independent(t *testing.T) {

	ctrl, store, fa := setupFeedTest(t)
	defer ctrl.Finish()

	status := seedStatus(store, "100", t0)
	err := fa.AttachPage(store, testAcct, "home", []*dal.Status{status}, "", t0)
	assert.Nil(t, err)
	err = fa.AttachPage(store, testAcct, "local", []*dal.Status{status}, "", t0)
	assert.Nil(t, err)

	assert.Equal(t, 2, len(store.feedEntries))
	assert.Equal(t, 1, len(store.anchorEntries("main", "home")))
	assert.Equal(t, 1, len(store.anchorEntries("main", "local")))
}
