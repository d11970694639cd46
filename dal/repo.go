package dal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"roost/shared"
	"sync"
	"time"
)

const schemaVer = 1

//go:embed scripts/*
var scripts embed.FS

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_repo.go -package mocks roost/dal IRepo

type IRepo interface {
	InitUpdateDb()
	// WithWriteScope runs body inside one serialized transaction. All
	// mutations commit atomically; any error rolls the whole body back.
	WithWriteScope(body func(scope IWriteScope) error) error
	GetStatusCount() (int, error)
	GetStatusByStatusId(platform, domain, statusId string) (*Status, error)
	GetFeedStatuses(accountKey, kind string, limit, offset int) ([]*Status, int, error)
	GetAttachments(statusDbId int64) ([]*Attachment, error)
}

// IWriteScope is the mutation surface handed to the reconciliation engine.
// It is only valid inside the WithWriteScope body that produced it.
type IWriteScope interface {
	FetchStatusByStatusId(platform, domain, statusId string) (*Status, error)
	ResolveStatus(ref StatusRef) (*Status, error)
	InsertStatus(props *StatusProps, rel *StatusRel) (*Status, error)
	UpdateStatus(status *Status) error
	FetchUserByUserId(platform, domain, userId string) (*User, error)
	InsertUser(props *UserProps, networkDate time.Time) (*User, error)
	UpdateUser(user *User) error
	UpsertPoll(statusDbId int64, props *PollProps, options []*PollOptionProps, networkDate time.Time) error
	GetAttachments(statusDbId int64) ([]*Attachment, error)
	ReplaceAttachments(statusDbId int64, media []*AttachmentProps) error
	UpsertPlace(statusDbId int64, props *PlaceProps) error
	ReplaceLinks(statusDbId int64, urls []string) error
	SetLikedBy(statusDbId, userDbId int64, liked bool) error
	SetRepostedBy(statusDbId, userDbId int64, reposted bool) error
	SetFollowedBy(userDbId, byUserDbId int64, following bool) error
	GetFeedEntry(accountKey, kind string, statusDbId int64) (*FeedEntry, error)
	InsertFeedEntry(entry *FeedEntry) (*FeedEntry, error)
	TouchFeedEntry(id int64, updatedAt time.Time) error
	SetFeedHasMore(id int64, hasMore bool) error
	ClearOtherFeedAnchors(accountKey, kind string, keepId int64) error
}

type Repo struct {
	cfg    *shared.Config
	logger shared.ILogger
	db     *sql.DB
	muDb   sync.RWMutex
}

func NewRepo(cfg *shared.Config, logger shared.ILogger) IRepo {

	var err error
	var db *sql.DB

	// _synchronous=1 is "normal"
	cstr := "file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	db, err = sql.Open("sqlite3", fmt.Sprintf(cstr, cfg.DbFile))
	if err != nil {
		logger.Errorf("Failed to open/create DB file: %s: %v", cfg.DbFile, err)
		panic(err)
	}

	repo := Repo{
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	return &repo
}

func (repo *Repo) InitUpdateDb() {

	dbVer := 0
	sysParamsExists := false
	var err error
	var rows *sql.Rows

	rows, err = repo.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='sys_params'")
	if err != nil {
		repo.logger.Errorf("Failed to check if 'sys_params' table exists: %v", err)
		panic(err)
	}
	for rows.Next() {
		sysParamsExists = true
	}
	_ = rows.Close()
	if !sysParamsExists {
		repo.logger.Printf("Database appears to be empty; current schema version is %d", schemaVer)
	} else {
		row := repo.db.QueryRow("SELECT val FROM sys_params WHERE name='schema_ver'")
		if err = row.Scan(&dbVer); err != nil {
			repo.logger.Errorf("Failed to query schema version: %v", err)
			panic(err)
		}
		repo.logger.Printf("Database is at version %d; current schema version is %d", dbVer, schemaVer)
	}
	for i := dbVer; i < schemaVer; i += 1 {
		nextVer := i + 1
		fn := fmt.Sprintf("scripts/create-%02d.sql", nextVer)
		repo.logger.Printf("Running %s", fn)
		var sqlBytes []byte
		if sqlBytes, err = scripts.ReadFile(fn); err != nil {
			repo.logger.Errorf("Failed to read init script %s: %v", fn, err)
			panic(err)
		}
		sqlStr := string(sqlBytes)
		if _, err = repo.db.Exec(sqlStr); err != nil {
			repo.logger.Errorf("Failed to execute init script %s: %v", fn, err)
			panic(err)
		}
		_, err = repo.db.Exec("UPDATE sys_params SET val=? WHERE name='schema_ver'", nextVer)
		if err != nil {
			repo.logger.Errorf("Failed to update schema_ver to %d: %v", i, err)
			panic(err)
		}
	}
}

func (repo *Repo) WithWriteScope(body func(scope IWriteScope) error) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	tx, err := repo.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write scope: %w", err)
	}

	scope := &writeScope{tx: tx, logger: repo.logger}
	if err = body(scope); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write scope: %w", err)
	}
	return nil
}

func (repo *Repo) GetStatusCount() (int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*) FROM statuses`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *Repo) GetStatusByStatusId(platform, domain, statusId string) (*Status, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return fetchStatusByStatusId(repo.db, repo.logger, platform, domain, statusId)
}

func (repo *Repo) GetFeedStatuses(accountKey, kind string, limit, offset int) ([]*Status, int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	var total int
	row := repo.db.QueryRow(`SELECT COUNT(*) FROM feed_entries WHERE account_key=? AND kind=?`,
		accountKey, kind)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + statusCols(`s.`) + `
		FROM statuses s JOIN feed_entries f ON f.status_id=s.id
		WHERE f.account_key=? AND f.kind=?
		ORDER BY s.created_at DESC LIMIT ? OFFSET ?`
	rows, err := repo.db.Query(query, accountKey, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []*Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, status)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (repo *Repo) GetAttachments(statusDbId int64) ([]*Attachment, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return getAttachments(repo.db, statusDbId)
}

// querier covers both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func statusCols(prefix string) string {
	cols := []string{"id", "platform", "domain", "status_id", "text", "created_at", "updated_at",
		"reply_count", "repost_count", "quote_count", "like_count", "language", "source",
		"conversation_id", "reply_settings", "reply_to_user_id", "author_id",
		"repost_of_id", "quote_of_id", "reply_to_id"}
	res := ""
	for i, c := range cols {
		if i > 0 {
			res += ", "
		}
		res += prefix + c
	}
	return res
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*Status, error) {
	var s Status
	err := row.Scan(&s.Id, &s.Platform, &s.Domain, &s.StatusId, &s.Text, &s.CreatedAt, &s.UpdatedAt,
		&s.ReplyCount, &s.RepostCount, &s.QuoteCount, &s.LikeCount, &s.Language, &s.Source,
		&s.ConversationId, &s.ReplySettings, &s.ReplyToUserId, &s.AuthorId,
		&s.RepostOfId, &s.QuoteOfId, &s.ReplyToId)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func fetchStatusByStatusId(q querier, logger shared.ILogger, platform, domain, statusId string) (*Status, error) {

	key := shared.EntityKey(platform, domain, statusId)
	query := `SELECT ` + statusCols("") + ` FROM statuses
		WHERE entity_key=? AND platform=? AND domain=? AND status_id=? ORDER BY id`
	rows, err := q.Query(query, key, platform, domain, statusId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res *Status
	count := 0
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		count += 1
		if res == nil {
			res = status
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	// More than one row per remote ID is a data integrity violation. We keep
	// going with the first row, deterministically.
	if count > 1 {
		logger.Errorf("Integrity violation: %d statuses stored for %s/%s id %s; using first",
			count, platform, domain, statusId)
	}
	return res, nil
}

func getAttachments(q querier, statusDbId int64) ([]*Attachment, error) {
	rows, err := q.Query(`SELECT id, status_id, position, kind, asset_url, preview_url,
		width, height, duration_ms, alt_text
		FROM attachments WHERE status_id=? ORDER BY position`, statusDbId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]*Attachment, 0)
	for rows.Next() {
		a := Attachment{}
		err = rows.Scan(&a.Id, &a.StatusId, &a.Position, &a.Kind, &a.AssetUrl, &a.PreviewUrl,
			&a.Width, &a.Height, &a.DurationMs, &a.AltText)
		if err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// writeScope wraps one transaction. Not safe for concurrent use; confined to
// the WithWriteScope body.
type writeScope struct {
	tx     *sql.Tx
	logger shared.ILogger
}

func (ws *writeScope) FetchStatusByStatusId(platform, domain, statusId string) (*Status, error) {
	return fetchStatusByStatusId(ws.tx, ws.logger, platform, domain, statusId)
}

func (ws *writeScope) ResolveStatus(ref StatusRef) (*Status, error) {
	row := ws.tx.QueryRow(`SELECT `+statusCols("")+` FROM statuses WHERE id=?`, ref.Id)
	status, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted since the ref was taken
			return nil, nil
		}
		return nil, err
	}
	return status, nil
}

func (ws *writeScope) InsertStatus(props *StatusProps, rel *StatusRel) (*Status, error) {

	key := shared.EntityKey(props.Platform, props.Domain, props.StatusId)
	result, err := ws.tx.Exec(`INSERT INTO statuses
		(entity_key, platform, domain, status_id, text, created_at, updated_at,
		 reply_count, repost_count, quote_count, like_count, language, source,
		 conversation_id, reply_settings, reply_to_user_id, author_id,
		 repost_of_id, quote_of_id, reply_to_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, props.Platform, props.Domain, props.StatusId, props.Text, props.CreatedAt, props.UpdatedAt,
		clampCount(props.ReplyCount), clampCount(props.RepostCount), clampCount(props.QuoteCount),
		clampCount(props.LikeCount), props.Language, props.Source,
		props.ConversationId, props.ReplySettings, props.ReplyToUserId, rel.AuthorId,
		nullableId(rel.RepostOfId), nullableId(rel.QuoteOfId), nullableId(rel.ReplyToId))
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err = ws.ReplaceLinks(id, props.Urls); err != nil {
		return nil, err
	}
	return ws.ResolveStatus(StatusRef{Id: id})
}

func (ws *writeScope) UpdateStatus(status *Status) error {

	_, err := ws.tx.Exec(`UPDATE statuses SET text=?, updated_at=?,
		reply_count=?, repost_count=?, quote_count=?, like_count=?,
		language=?, source=?, conversation_id=?, reply_settings=?, reply_to_user_id=?
		WHERE id=?`,
		status.Text, status.UpdatedAt,
		clampCount(status.ReplyCount), clampCount(status.RepostCount),
		clampCount(status.QuoteCount), clampCount(status.LikeCount),
		status.Language, status.Source, status.ConversationId, status.ReplySettings,
		status.ReplyToUserId, status.Id)
	return err
}

func (ws *writeScope) FetchUserByUserId(platform, domain, userId string) (*User, error) {

	key := shared.EntityKey(platform, domain, userId)
	rows, err := ws.tx.Query(`SELECT id, platform, domain, user_id, handle, name, protected, verified,
		avatar_url, banner_url, bio, followers_count, following_count, listed_count, updated_at
		FROM users WHERE entity_key=? AND platform=? AND domain=? AND user_id=? ORDER BY id`,
		key, platform, domain, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res *User
	count := 0
	for rows.Next() {
		u := User{}
		err = rows.Scan(&u.Id, &u.Platform, &u.Domain, &u.UserId, &u.Handle, &u.Name, &u.Protected,
			&u.Verified, &u.AvatarUrl, &u.BannerUrl, &u.Bio, &u.FollowersCount, &u.FollowingCount,
			&u.ListedCount, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		count += 1
		if res == nil {
			res = &u
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if count > 1 {
		ws.logger.Errorf("Integrity violation: %d users stored for %s/%s id %s; using first",
			count, platform, domain, userId)
	}
	return res, nil
}

func (ws *writeScope) InsertUser(props *UserProps, networkDate time.Time) (*User, error) {

	key := shared.EntityKey(props.Platform, props.Domain, props.UserId)
	result, err := ws.tx.Exec(`INSERT INTO users
		(entity_key, platform, domain, user_id, handle, name, protected, verified,
		 avatar_url, banner_url, bio, followers_count, following_count, listed_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, props.Platform, props.Domain, props.UserId, props.Handle, props.Name,
		props.Protected, props.Verified, props.AvatarUrl, props.BannerUrl, props.Bio,
		clampCount(props.FollowersCount), clampCount(props.FollowingCount),
		clampCount(props.ListedCount), networkDate)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{
		Id: id, Platform: props.Platform, Domain: props.Domain, UserId: props.UserId,
		Handle: props.Handle, Name: props.Name, Protected: props.Protected, Verified: props.Verified,
		AvatarUrl: props.AvatarUrl, BannerUrl: props.BannerUrl, Bio: props.Bio,
		FollowersCount: props.FollowersCount, FollowingCount: props.FollowingCount,
		ListedCount: props.ListedCount, UpdatedAt: networkDate,
	}, nil
}

func (ws *writeScope) UpdateUser(user *User) error {

	_, err := ws.tx.Exec(`UPDATE users SET handle=?, name=?, protected=?, verified=?,
		avatar_url=?, banner_url=?, bio=?, followers_count=?, following_count=?, listed_count=?,
		updated_at=? WHERE id=?`,
		user.Handle, user.Name, user.Protected, user.Verified,
		user.AvatarUrl, user.BannerUrl, user.Bio,
		clampCount(user.FollowersCount), clampCount(user.FollowingCount),
		clampCount(user.ListedCount), user.UpdatedAt, user.Id)
	return err
}

func (ws *writeScope) UpsertPoll(statusDbId int64, props *PollProps, options []*PollOptionProps, networkDate time.Time) error {

	var pollDbId int64
	row := ws.tx.QueryRow(`SELECT id FROM polls WHERE status_id=?`, statusDbId)
	err := row.Scan(&pollDbId)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var expiresAt any
	if props.ExpiresAt != nil {
		expiresAt = *props.ExpiresAt
	}

	if errors.Is(err, sql.ErrNoRows) {
		result, err := ws.tx.Exec(`INSERT INTO polls (status_id, poll_id, expires_at, expired, voted, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			statusDbId, props.PollId, expiresAt, props.Expired, props.Voted, networkDate)
		if err != nil {
			return err
		}
		if pollDbId, err = result.LastInsertId(); err != nil {
			return err
		}
	} else {
		_, err = ws.tx.Exec(`UPDATE polls SET poll_id=?, expires_at=?, expired=?, voted=?, updated_at=?
			WHERE id=?`,
			props.PollId, expiresAt, props.Expired, props.Voted, networkDate, pollDbId)
		if err != nil {
			return err
		}
		if _, err = ws.tx.Exec(`DELETE FROM poll_options WHERE poll_id=?`, pollDbId); err != nil {
			return err
		}
	}

	for _, opt := range options {
		_, err = ws.tx.Exec(`INSERT INTO poll_options (poll_id, position, label, votes_count)
			VALUES (?, ?, ?, ?)`,
			pollDbId, opt.Position, opt.Label, clampCount(opt.VotesCount))
		if err != nil {
			return err
		}
	}
	return nil
}

func (ws *writeScope) GetAttachments(statusDbId int64) ([]*Attachment, error) {
	return getAttachments(ws.tx, statusDbId)
}

func (ws *writeScope) ReplaceAttachments(statusDbId int64, media []*AttachmentProps) error {

	if _, err := ws.tx.Exec(`DELETE FROM attachments WHERE status_id=?`, statusDbId); err != nil {
		return err
	}
	for i, m := range media {
		_, err := ws.tx.Exec(`INSERT INTO attachments
			(status_id, position, kind, asset_url, preview_url, width, height, duration_ms, alt_text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			statusDbId, i, m.Kind, m.AssetUrl, m.PreviewUrl, m.Width, m.Height, m.DurationMs, m.AltText)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ws *writeScope) UpsertPlace(statusDbId int64, props *PlaceProps) error {

	_, err := ws.tx.Exec(`INSERT INTO places (status_id, place_id, full_name, name, country, country_code)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (status_id) DO UPDATE SET place_id=excluded.place_id, full_name=excluded.full_name,
			name=excluded.name, country=excluded.country, country_code=excluded.country_code`,
		statusDbId, props.PlaceId, props.FullName, props.Name, props.Country, props.CountryCode)
	return err
}

func (ws *writeScope) ReplaceLinks(statusDbId int64, urls []string) error {

	if len(urls) == 0 {
		return nil
	}
	if _, err := ws.tx.Exec(`DELETE FROM status_links WHERE status_id=?`, statusDbId); err != nil {
		return err
	}
	for i, u := range urls {
		if _, err := ws.tx.Exec(`INSERT INTO status_links (status_id, position, url) VALUES (?, ?, ?)`,
			statusDbId, i, u); err != nil {
			return err
		}
	}
	return nil
}

func (ws *writeScope) SetLikedBy(statusDbId, userDbId int64, liked bool) error {
	return ws.setMembership("status_likes", statusDbId, userDbId, liked)
}

func (ws *writeScope) SetRepostedBy(statusDbId, userDbId int64, reposted bool) error {
	return ws.setMembership("status_reposts", statusDbId, userDbId, reposted)
}

func (ws *writeScope) SetFollowedBy(userDbId, byUserDbId int64, following bool) error {
	var err error
	if following {
		_, err = ws.tx.Exec(`INSERT INTO user_following (user_id, by_user_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`, userDbId, byUserDbId)
	} else {
		_, err = ws.tx.Exec(`DELETE FROM user_following WHERE user_id=? AND by_user_id=?`,
			userDbId, byUserDbId)
	}
	return err
}

func (ws *writeScope) setMembership(table string, statusDbId, userDbId int64, member bool) error {
	var err error
	if member {
		_, err = ws.tx.Exec(`INSERT INTO `+table+` (status_id, user_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`, statusDbId, userDbId)
	} else {
		_, err = ws.tx.Exec(`DELETE FROM `+table+` WHERE status_id=? AND user_id=?`, statusDbId, userDbId)
	}
	return err
}

func (ws *writeScope) GetFeedEntry(accountKey, kind string, statusDbId int64) (*FeedEntry, error) {

	row := ws.tx.QueryRow(`SELECT id, account_key, kind, status_id, has_more, created_at, updated_at
		FROM feed_entries WHERE account_key=? AND kind=? AND status_id=?`,
		accountKey, kind, statusDbId)
	var fe FeedEntry
	err := row.Scan(&fe.Id, &fe.AccountKey, &fe.Kind, &fe.StatusId, &fe.HasMore, &fe.CreatedAt, &fe.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fe, nil
}

func (ws *writeScope) InsertFeedEntry(entry *FeedEntry) (*FeedEntry, error) {

	result, err := ws.tx.Exec(`INSERT INTO feed_entries
		(account_key, kind, status_id, has_more, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.AccountKey, entry.Kind, entry.StatusId, entry.HasMore, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	res := *entry
	res.Id = id
	return &res, nil
}

func (ws *writeScope) TouchFeedEntry(id int64, updatedAt time.Time) error {
	_, err := ws.tx.Exec(`UPDATE feed_entries SET updated_at=? WHERE id=?`, updatedAt, id)
	return err
}

func (ws *writeScope) SetFeedHasMore(id int64, hasMore bool) error {
	_, err := ws.tx.Exec(`UPDATE feed_entries SET has_more=? WHERE id=?`, hasMore, id)
	return err
}

func (ws *writeScope) ClearOtherFeedAnchors(accountKey, kind string, keepId int64) error {
	_, err := ws.tx.Exec(`UPDATE feed_entries SET has_more=0
		WHERE account_key=? AND kind=? AND id<>? AND has_more=1`,
		accountKey, kind, keepId)
	return err
}

// Counts arrive as signed integers; a negative value in a payload must never
// end up in the store.
func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func nullableId(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
