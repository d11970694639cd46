package logic

import (
	"roost/dal"
	"roost/shared"
	"sort"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_feed_attacher.go -package mocks roost/logic IFeedAttacher

// IFeedAttacher indexes reconciled statuses into the ordered per-account
// feed and maintains the paging anchors. HasMore only ever transitions
// true -> false, via an explicit max-id match or the new-oldest logic; it
// never flips back on its own.
type IFeedAttacher interface {
	AttachPage(scope dal.IWriteScope, acct *shared.Account, kind string,
		statuses []*dal.Status, maxId string, networkDate time.Time) error
}

type feedAttacher struct {
	logger  shared.ILogger
	metrics IMetrics
}

func NewFeedAttacher(logger shared.ILogger, metrics IMetrics) IFeedAttacher {
	return &feedAttacher{
		logger:  logger,
		metrics: metrics,
	}
}

func (fa *feedAttacher) AttachPage(
	scope dal.IWriteScope,
	acct *shared.Account,
	kind string,
	statuses []*dal.Status,
	maxId string,
	networkDate time.Time,
) error {

	// A max-id anchor matching a previously persisted status means the gap
	// below it is now sewn closed.
	if maxId != "" {
		anchor, err := scope.FetchStatusByStatusId(acct.Platform, acct.Domain, maxId)
		if err != nil {
			return err
		}
		if anchor != nil {
			entry, err := scope.GetFeedEntry(acct.Key, kind, anchor.Id)
			if err != nil {
				return err
			}
			if entry != nil && entry.HasMore {
				if err = scope.SetFeedHasMore(entry.Id, false); err != nil {
					return err
				}
				fa.metrics.FeedAnchorCleared()
			}
		}
	}

	if len(statuses) == 0 {
		return nil
	}

	sorted := make([]*dal.Status, len(statuses))
	copy(sorted, statuses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	oldest := sorted[0]

	for _, status := range sorted {
		entry, err := scope.GetFeedEntry(acct.Key, kind, status.Id)
		if err != nil {
			return err
		}
		if entry != nil {
			// Already attached: this sync is extending a cached window
			if err = scope.TouchFeedEntry(entry.Id, networkDate); err != nil {
				return err
			}
			continue
		}
		newEntry := &dal.FeedEntry{
			AccountKey: acct.Key,
			Kind:       kind,
			StatusId:   status.Id,
			HasMore:    false,
			CreatedAt:  status.CreatedAt,
			UpdatedAt:  networkDate,
		}
		inserted, err := scope.InsertFeedEntry(newEntry)
		if err != nil {
			return err
		}
		// The batch's oldest status opening a new window becomes the paging
		// anchor, and takes the anchor role over from any earlier one.
		if status == oldest {
			if err = scope.SetFeedHasMore(inserted.Id, true); err != nil {
				return err
			}
			if err = scope.ClearOtherFeedAnchors(acct.Key, kind, inserted.Id); err != nil {
				return err
			}
		}
	}
	return nil
}
