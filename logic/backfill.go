package logic

import (
	"context"
	"roost/dal"
	"roost/shared"
	"sync"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_backfill.go -package mocks roost/logic IBackfill

// IBackfill fills fields the primary response omits: per-identity like and
// repost flags, video/GIF asset URLs, polls and reply settings. It issues
// chunked, bounded-parallel lookups and applies one narrow merge pass that
// bypasses the monotonic timestamp guard, since it targets known structural
// gaps rather than a general re-sync.
type IBackfill interface {
	Run(ctx context.Context, acct *shared.Account, targets []*BackfillTarget) error
}

// BackfillTarget names one already-reconciled status: the remote ID drives the
// network lookup, the record handle re-resolves the row inside the patch
// pass's own write scope.
type BackfillTarget struct {
	StatusId string
	Ref      dal.StatusRef
}

type backfill struct {
	cfg     *shared.Config
	logger  shared.ILogger
	repo    dal.IRepo
	lookup  ILookupClient
	metrics IMetrics
}

func NewBackfill(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	lookup ILookupClient,
	metrics IMetrics,
) IBackfill {
	return &backfill{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		lookup:  lookup,
		metrics: metrics,
	}
}

func (bf *backfill) Run(ctx context.Context, acct *shared.Account, targets []*BackfillTarget) error {

	if len(targets) == 0 {
		return nil
	}

	statusIds := make([]string, len(targets))
	for i, t := range targets {
		statusIds[i] = t.StatusId
	}
	chunks := chunkIds(statusIds, bf.cfg.LookupChunkSize)

	// Fan out, fan back in. One failed chunk is skipped, not retried inline;
	// the caller may re-invoke later.
	sem := make(chan struct{}, bf.cfg.LookupParallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var batches []*Batch
	for _, chunk := range chunks {
		wg.Add(1)
		go func(ids []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			obs := bf.metrics.StartLookupOut(acct.Platform)
			defer obs.Finish()

			res, err := bf.lookup.LookupStatuses(ctx, acct, ids)
			if err != nil {
				bf.logger.Warnf("Backfill chunk of %d statuses failed; skipping: %v", len(ids), err)
				bf.metrics.BackfillChunkFailed()
				return
			}
			mu.Lock()
			batches = append(batches, res...)
			mu.Unlock()
		}(chunk)
	}
	wg.Wait()

	if len(batches) == 0 {
		return nil
	}

	return bf.repo.WithWriteScope(func(scope dal.IWriteScope) error {
		me, err := scope.FetchUserByUserId(acct.Platform, acct.Domain, acct.UserID)
		if err != nil {
			return err
		}
		for _, target := range targets {
			status, err := scope.ResolveStatus(target.Ref)
			if err != nil {
				return err
			}
			if status == nil {
				// Deleted since the primary reconciliation committed
				continue
			}
			patched := false
			for _, batch := range batches {
				raw := batch.Statuses[target.StatusId]
				if raw == nil {
					continue
				}
				applied, err := bf.apply(scope, me, status, raw, batch)
				if err != nil {
					return err
				}
				if applied {
					patched = true
				}
			}
			if patched {
				bf.metrics.BackfillStatusPatched()
			}
		}
		return nil
	})
}

// apply patches one status from one lookup entity. Additive and idempotent:
// an abandoned or replayed chunk cannot corrupt state.
func (bf *backfill) apply(scope dal.IWriteScope, me *dal.User, status *dal.Status, raw RawStatus, batch *Batch) (bool, error) {

	patched := false

	// Like/repost state for the requesting identity
	if me != nil {
		ms := raw.MeState()
		if ms.Liked != nil {
			if err := scope.SetLikedBy(status.Id, me.Id, *ms.Liked); err != nil {
				return patched, err
			}
			patched = true
		}
		if ms.Reposted != nil {
			if err := scope.SetRepostedBy(status.Id, me.Id, *ms.Reposted); err != nil {
				return patched, err
			}
			patched = true
		}
	}

	// Media: this is the one path allowed to clear-and-replace. A v1 lookup
	// carrying animated media fixes the v2 missing-asset-URL gap; an empty
	// stored set gets whatever the lookup knows. A guarded (v2) batch carries
	// asset-less video/GIF entries and may only fill an empty stored set.
	if incoming := raw.Media(); len(incoming) > 0 {
		existing, err := scope.GetAttachments(status.Id)
		if err != nil {
			return patched, err
		}
		overwrite := len(existing) == 0
		if !overwrite && !batch.Policy.GuardAnimatedMedia && containsAnimatedMedia(incoming) {
			overwrite = true
		}
		if overwrite {
			if err = scope.ReplaceAttachments(status.Id, incoming); err != nil {
				return patched, err
			}
			patched = true
		}
	}

	// Poll data absent from the primary payload
	if poll := raw.Poll(); poll != nil {
		if err := scope.UpsertPoll(status.Id, poll.Props, poll.Options, batch.NetworkDate); err != nil {
			return patched, err
		}
		patched = true
	}

	// Reply settings (v2-only field)
	props := raw.Props(batch.NetworkDate)
	if props.ReplySettings != "" && props.ReplySettings != status.ReplySettings {
		status.ReplySettings = props.ReplySettings
		if err := scope.UpdateStatus(status); err != nil {
			return patched, err
		}
		patched = true
	}

	return patched, nil
}

func chunkIds(ids []string, size int) [][]string {
	if size <= 0 {
		size = 100
	}
	var res [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		res = append(res, ids[start:end])
	}
	return res
}
