package logic

import (
	"fmt"
	"roost/dal"
	"roost/shared"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_reconciler.go -package mocks roost/logic IReconciler

// IReconciler turns raw network status entities into canonical persisted
// records: at most one record per remote ID, with author, repost/quote/reply
// chains, polls, media and places wired up.
type IReconciler interface {
	ReconcileStatus(scope dal.IWriteScope, batch *Batch, pctx *PersistContext, statusId string) (*PersistResult, error)
	ReconcileUser(scope dal.IWriteScope, batch *Batch, pctx *PersistContext, userId string) (user *dal.User, isNew bool, err error)
}

type PersistResult struct {
	Status      *dal.Status
	IsNew       bool
	IsNewAuthor bool
}

// PersistContext carries the per-ingestion state: the identity caches live
// exactly as long as one top-level ingestion call and are never shared
// across concurrent calls.
type PersistContext struct {
	Me          *dal.User // may be nil when the local identity is unknown
	StatusCache *PersistCache[dal.Status]
	UserCache   *PersistCache[dal.User]
	NetworkDate time.Time
}

func NewPersistContext(me *dal.User, networkDate time.Time) *PersistContext {
	return &PersistContext{
		Me:          me,
		StatusCache: NewPersistCache[dal.Status](),
		UserCache:   NewPersistCache[dal.User](),
		NetworkDate: networkDate,
	}
}

type reconciler struct {
	logger  shared.ILogger
	metrics IMetrics
}

func NewReconciler(logger shared.ILogger, metrics IMetrics) IReconciler {
	return &reconciler{
		logger:  logger,
		metrics: metrics,
	}
}

func (r *reconciler) ReconcileStatus(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	statusId string,
) (*PersistResult, error) {
	// The visited set guards against duplicate IDs in malformed includes
	// lists; recursion depth is otherwise bounded by the batch dictionary.
	return r.reconcileStatus(scope, batch, pctx, statusId, map[string]bool{})
}

func (r *reconciler) reconcileStatus(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	statusId string,
	visited map[string]bool,
) (*PersistResult, error) {

	raw := batch.Statuses[statusId]
	old, err := r.fetchStatus(scope, batch, pctx, statusId)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		// Not in this batch: whatever the store knows is the answer
		if old != nil {
			return &PersistResult{Status: old}, nil
		}
		return nil, fmt.Errorf("status %s is neither in the batch nor in the store", statusId)
	}
	if visited[statusId] {
		if old != nil {
			return &PersistResult{Status: old}, nil
		}
		return nil, fmt.Errorf("cyclic reference to status %s", statusId)
	}
	visited[statusId] = true

	// Resolve the referenced tree first, so referenced statuses are persisted
	// before anything that points at them: reply-to, then repost, then quote.
	refs := raw.Refs()
	replyTo := r.resolveRef(scope, batch, pctx, visited, refs.ReplyToId, "reply-to")
	repost := r.resolveRef(scope, batch, pctx, visited, refs.RepostOfId, "repost-of")
	var quote *dal.Status
	if repost == nil {
		// A status is never simultaneously a repost and a quote; repost wins
		quote = r.resolveRef(scope, batch, pctx, visited, refs.QuoteOfId, "quote-of")
	}

	if old != nil {
		if err = r.merge(scope, batch, pctx, raw, old); err != nil {
			return nil, err
		}
		pctx.StatusCache.Store(statusId, old)
		return &PersistResult{Status: old}, nil
	}

	// A status without a resolvable author is a hard failure for that status
	author, authorIsNew, err := r.ReconcileUser(scope, batch, pctx, raw.AuthorId())
	if err != nil {
		return nil, fmt.Errorf("cannot resolve author of status %s: %w", statusId, err)
	}

	props := raw.Props(pctx.NetworkDate)
	props.Platform = string(batch.Platform)
	props.Domain = batch.Domain
	rel := &dal.StatusRel{AuthorId: author.Id}
	if repost != nil {
		rel.RepostOfId = &repost.Id
	}
	if quote != nil {
		rel.QuoteOfId = &quote.Id
	}
	if replyTo != nil {
		rel.ReplyToId = &replyTo.Id
	}

	status, err := scope.InsertStatus(props, rel)
	if err != nil {
		return nil, err
	}

	// Owned entities attach once the status record exists
	if media := raw.Media(); len(media) > 0 {
		if err = scope.ReplaceAttachments(status.Id, media); err != nil {
			return nil, err
		}
	}
	if place := raw.Place(); place != nil {
		if err = scope.UpsertPlace(status.Id, place); err != nil {
			return nil, err
		}
	}
	if poll := raw.Poll(); poll != nil {
		if err = scope.UpsertPoll(status.Id, poll.Props, poll.Options, pctx.NetworkDate); err != nil {
			return nil, err
		}
	}
	r.applyMeState(scope, pctx, raw, status)

	pctx.StatusCache.Store(statusId, status)
	r.metrics.StatusCreated()
	return &PersistResult{Status: status, IsNew: true, IsNewAuthor: authorIsNew}, nil
}

// resolveRef reconciles one referenced status. Resolution failures for
// non-author relations are absorbed: the repost/quote/reply chain degrades to
// a plain status rather than failing the whole batch.
func (r *reconciler) resolveRef(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	visited map[string]bool,
	refId, relName string,
) *dal.Status {
	if refId == "" {
		return nil
	}
	res, err := r.reconcileStatus(scope, batch, pctx, refId, visited)
	if err != nil {
		r.logger.Warnf("Failed to resolve %s target %s; leaving relation unset: %v", relName, refId, err)
		return nil
	}
	return res.Status
}

func (r *reconciler) fetchStatus(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	statusId string,
) (*dal.Status, error) {
	if cached := pctx.StatusCache.Lookup(statusId); cached != nil {
		return cached, nil
	}
	return scope.FetchStatusByStatusId(string(batch.Platform), batch.Domain, statusId)
}

func (r *reconciler) merge(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	raw RawStatus,
	old *dal.Status,
) error {

	if pctx.NetworkDate.After(old.UpdatedAt) {
		props := raw.Props(pctx.NetworkDate)
		old.Text = props.Text
		old.ReplyCount = props.ReplyCount
		old.RepostCount = props.RepostCount
		old.QuoteCount = props.QuoteCount
		old.LikeCount = props.LikeCount
		old.Language = props.Language
		old.Source = props.Source
		old.ReplyToUserId = props.ReplyToUserId
		// v2-only fields; a v1 or Mastodon payload must not blank them
		if props.ConversationId != "" {
			old.ConversationId = props.ConversationId
		}
		if props.ReplySettings != "" {
			old.ReplySettings = props.ReplySettings
		}
		old.UpdatedAt = pctx.NetworkDate
		if err := scope.UpdateStatus(old); err != nil {
			return err
		}
		if err := scope.ReplaceLinks(old.Id, props.Urls); err != nil {
			return err
		}

		// An empty incoming media set never clears a known one; and guarded
		// platforms may not overwrite stored video/GIF attachments.
		if media := raw.Media(); len(media) > 0 {
			overwrite := true
			if batch.Policy.GuardAnimatedMedia && containsAnimatedMedia(media) {
				existing, err := scope.GetAttachments(old.Id)
				if err != nil {
					return err
				}
				overwrite = len(existing) == 0
			}
			if overwrite {
				if err := scope.ReplaceAttachments(old.Id, media); err != nil {
					return err
				}
			}
		}

		// Geo data may be legitimately erased upstream, so an incoming place
		// always wins
		if place := raw.Place(); place != nil {
			if err := scope.UpsertPlace(old.Id, place); err != nil {
				return err
			}
		}
	} else {
		// Out-of-order or replayed response; a no-op by design
		r.metrics.StaleWriteRejected()
	}

	// Poll state (vote counts, expiry) is always fresh; reattach outside the
	// timestamp guard. A status first seen via v1 gains its poll here.
	if poll := raw.Poll(); poll != nil {
		if err := scope.UpsertPoll(old.Id, poll.Props, poll.Options, pctx.NetworkDate); err != nil {
			return err
		}
	}

	// Author profile fields are idempotent; merge unguarded. The relation is
	// already wired, so a resolution failure here is absorbed.
	if _, _, err := r.ReconcileUser(scope, batch, pctx, raw.AuthorId()); err != nil {
		r.logger.Warnf("Failed to refresh author %s of status %s: %v", raw.AuthorId(), old.StatusId, err)
	}
	r.applyMeState(scope, pctx, raw, old)

	r.metrics.StatusMerged()
	return nil
}

func (r *reconciler) applyMeState(scope dal.IWriteScope, pctx *PersistContext, raw RawStatus, status *dal.Status) {
	if pctx.Me == nil {
		return
	}
	ms := raw.MeState()
	if ms.Liked != nil {
		if err := scope.SetLikedBy(status.Id, pctx.Me.Id, *ms.Liked); err != nil {
			r.logger.Warnf("Failed to set like flag on status %s: %v", status.StatusId, err)
		}
	}
	if ms.Reposted != nil {
		if err := scope.SetRepostedBy(status.Id, pctx.Me.Id, *ms.Reposted); err != nil {
			r.logger.Warnf("Failed to set repost flag on status %s: %v", status.StatusId, err)
		}
	}
}

func (r *reconciler) ReconcileUser(
	scope dal.IWriteScope,
	batch *Batch,
	pctx *PersistContext,
	userId string,
) (*dal.User, bool, error) {

	if userId == "" {
		return nil, false, fmt.Errorf("empty user id")
	}
	if cached := pctx.UserCache.Lookup(userId); cached != nil {
		return cached, false, nil
	}

	old, err := scope.FetchUserByUserId(string(batch.Platform), batch.Domain, userId)
	if err != nil {
		return nil, false, err
	}
	raw := batch.Users[userId]

	if old != nil {
		if raw != nil {
			// Profile fields are always safe to overwrite with the latest fetch
			props := raw.Props()
			old.Handle = props.Handle
			old.Name = props.Name
			old.Protected = props.Protected
			old.Verified = props.Verified
			old.AvatarUrl = props.AvatarUrl
			old.BannerUrl = props.BannerUrl
			old.Bio = props.Bio
			old.FollowersCount = props.FollowersCount
			old.FollowingCount = props.FollowingCount
			old.ListedCount = props.ListedCount
			old.UpdatedAt = pctx.NetworkDate
			if err = scope.UpdateUser(old); err != nil {
				return nil, false, err
			}
		}
		pctx.UserCache.Store(userId, old)
		return old, false, nil
	}

	if raw == nil {
		return nil, false, fmt.Errorf("user %s is neither in the batch nor in the store", userId)
	}
	props := raw.Props()
	props.Platform = string(batch.Platform)
	props.Domain = batch.Domain
	user, err := scope.InsertUser(props, pctx.NetworkDate)
	if err != nil {
		return nil, false, err
	}
	pctx.UserCache.Store(userId, user)
	r.metrics.UserCreated()
	return user, true, nil
}
