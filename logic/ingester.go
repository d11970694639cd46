package logic

import (
	"context"
	"fmt"
	"roost/dal"
	"roost/dto"
	"roost/shared"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_ingester.go -package mocks roost/logic IIngester

// IIngester is the entry point of the reconciliation engine: one call takes
// one decoded timeline page and produces a consistent persisted graph.
type IIngester interface {
	IngestTimelinePage(ctx context.Context, page *TimelinePage) (*IngestResult, error)
}

// TimelinePage is one decoded page of a timeline response. Exactly one of
// the payload members is expected to be set.
type TimelinePage struct {
	AccountKey  string             `json:"account_key"`
	Kind        string             `json:"kind"`   // home | local | federated | list
	MaxId       string             `json:"max_id"` // paging anchor of the request, if any
	NetworkDate time.Time          `json:"network_date"`
	TwitterV1   []*dto.TweetV1     `json:"twitter_v1,omitempty"`
	TwitterV2   *dto.TimelineV2    `json:"twitter_v2,omitempty"`
	Mastodon    []*dto.StatusMasto `json:"mastodon,omitempty"`
}

type IngestResult struct {
	Persisted   int `json:"persisted"`
	NewStatuses int `json:"new_statuses"`
	NewAuthors  int `json:"new_authors"`
	Skipped     int `json:"skipped"`
}

type ingester struct {
	cfg          *shared.Config
	logger       shared.ILogger
	repo         dal.IRepo
	reconciler   IReconciler
	feedAttacher IFeedAttacher
	backfill     IBackfill
	metrics      IMetrics
}

func NewIngester(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	reconciler IReconciler,
	feedAttacher IFeedAttacher,
	backfill IBackfill,
	metrics IMetrics,
) IIngester {
	return &ingester{
		cfg:          cfg,
		logger:       logger,
		repo:         repo,
		reconciler:   reconciler,
		feedAttacher: feedAttacher,
		backfill:     backfill,
		metrics:      metrics,
	}
}

func (ing *ingester) IngestTimelinePage(ctx context.Context, page *TimelinePage) (*IngestResult, error) {

	acct := ing.cfg.GetAccount(page.AccountKey)
	if acct == nil {
		return nil, fmt.Errorf("unknown account: %s", page.AccountKey)
	}

	networkDate := page.NetworkDate
	if networkDate.IsZero() {
		networkDate = time.Now().UTC()
	}

	var batch *Batch
	needsBackfill := false
	switch {
	case page.TwitterV2 != nil:
		batch = BatchFromTwitterV2(acct.Domain, page.TwitterV2.Data, page.TwitterV2.Includes, networkDate)
		// v2 list responses omit me-flags and video asset URLs
		needsBackfill = true
	case page.TwitterV1 != nil:
		batch = BatchFromTwitterV1(acct.Domain, page.TwitterV1, networkDate)
	case page.Mastodon != nil:
		batch = BatchFromMastodon(acct.Domain, page.Mastodon, networkDate)
	default:
		return nil, fmt.Errorf("page for account %s carries no payload", page.AccountKey)
	}

	obs := ing.metrics.StartIngest(string(batch.Platform))
	defer obs.Finish()
	start := time.Now()

	res := IngestResult{}
	var attached []*dal.Status
	var targets []*BackfillTarget
	err := ing.repo.WithWriteScope(func(scope dal.IWriteScope) error {
		me, err := scope.FetchUserByUserId(acct.Platform, acct.Domain, acct.UserID)
		if err != nil {
			return err
		}
		pctx := NewPersistContext(me, networkDate)
		for _, id := range batch.Order {
			pres, err := ing.reconciler.ReconcileStatus(scope, batch, pctx, id)
			if err != nil {
				ing.logger.Warnf("Skipping status %s: %v", id, err)
				ing.metrics.StatusSkipped()
				res.Skipped += 1
				continue
			}
			res.Persisted += 1
			if pres.IsNew {
				res.NewStatuses += 1
			}
			if pres.IsNewAuthor {
				res.NewAuthors += 1
			}
			// A home page only carries statuses from followed authors
			if me != nil && page.Kind == "home" && pres.Status.AuthorId != me.Id {
				if err = scope.SetFollowedBy(pres.Status.AuthorId, me.Id, true); err != nil {
					ing.logger.Warnf("Failed to set follow flag on author of status %s: %v", id, err)
				}
			}
			attached = append(attached, pres.Status)
		}
		if needsBackfill {
			targets = backfillTargets(batch, pctx)
		}
		return ing.feedAttacher.AttachPage(scope, acct, page.Kind, attached, page.MaxId, networkDate)
	})
	if err != nil {
		return nil, err
	}

	ing.logger.Debugf("Persisted %d statuses (%d new, %d skipped) for %s/%s in %.2fs",
		res.Persisted, res.NewStatuses, res.Skipped, page.AccountKey, page.Kind,
		time.Since(start).Seconds())
	if count, err := ing.repo.GetStatusCount(); err == nil {
		ing.metrics.TotalStatuses(count)
	}

	if len(targets) > 0 {
		if err = ing.backfill.Run(ctx, acct, targets); err != nil {
			// Soft failure: the primary reconciliation already committed
			ing.logger.Warnf("Backfill for %s/%s failed: %v", page.AccountKey, page.Kind, err)
		}
	}

	return &res, nil
}

// backfillTargets lists every status the page persisted, primaries first, so
// the backfill also patches included repost/quote/reply targets. Record
// handles are taken here; the patch pass re-resolves them in its own scope.
func backfillTargets(batch *Batch, pctx *PersistContext) []*BackfillTarget {
	var res []*BackfillTarget
	seen := map[string]bool{}
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if status := pctx.StatusCache.Lookup(id); status != nil {
			res = append(res, &BackfillTarget{StatusId: id, Ref: status.Ref()})
		}
	}
	for _, id := range batch.Order {
		add(id)
	}
	for id := range batch.Statuses {
		add(id)
	}
	return res
}
