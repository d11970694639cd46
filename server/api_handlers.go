package server

import (
	"database/sql"
	"encoding/json"
	"github.com/gorilla/mux"
	"net/http"
	"roost/dal"
	"roost/logic"
	"roost/shared"
	"strconv"
	"time"
)

type apiHandlerGroup struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	ingester logic.IIngester
}

func NewApiHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	ingester logic.IIngester,
) IHandlerGroup {
	res := apiHandlerGroup{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		ingester: ingester,
	}
	return &res
}

func (hg *apiHandlerGroup) Prefix() string {
	return "/api"
}

func (hg *apiHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"POST", "/ingest", func(w http.ResponseWriter, r *http.Request) { hg.postIngest(w, r) }},
		{"GET", "/timelines/{key}/{kind}", func(w http.ResponseWriter, r *http.Request) { hg.getTimeline(w, r) }},
		{"GET", "/statuses/{platform}/{domain}/{id}", func(w http.ResponseWriter, r *http.Request) { hg.getStatus(w, r) }},
	}
}

func (hg *apiHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return hg.authMW(next)
	}
}

func (hg *apiHandlerGroup) authMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var apiKey = r.Header.Get(apiKeyHeader)
		found := false
		for _, key := range hg.cfg.Secrets.ApiKeys {
			if apiKey == key {
				found = true
			}
		}
		if !found {
			keyPart := apiKey
			if len(apiKey) > 4 {
				keyPart = apiKey[:4] + "..."
			}
			hg.logger.Warnf("API request with missing or invalid key '%s': %s", keyPart, r.URL.Path)
			writeErrorResponse(w, badApiKeyStr, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (hg *apiHandlerGroup) postIngest(w http.ResponseWriter, r *http.Request) {

	hg.logger.Info("POST /api/ingest: Request received")

	body := readBody(hg.logger, w, r)
	if body == nil {
		return
	}
	var page logic.TimelinePage
	if err := json.Unmarshal(body, &page); err != nil {
		hg.logger.Warnf("Invalid ingest payload: %v", err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}

	res, err := hg.ingester.IngestTimelinePage(r.Context(), &page)
	if err != nil {
		hg.logger.Errorf("Ingest failed for account '%s': %v", page.AccountKey, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	writeJsonResponse(hg.logger, w, res)
}

func (hg *apiHandlerGroup) getTimeline(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)
	key := vars["key"]
	kind := vars["kind"]

	limit := queryInt(r, "limit", 40)
	offset := queryInt(r, "offset", 0)

	statuses, total, err := hg.repo.GetFeedStatuses(key, kind, limit, offset)
	if err != nil {
		hg.logger.Errorf("Failed to get timeline %s/%s: %v", key, kind, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}

	resp := timelineResp{Total: total, Statuses: []*statusResp{}}
	for _, status := range statuses {
		resp.Statuses = append(resp.Statuses, toStatusResp(status))
	}
	writeJsonResponse(hg.logger, w, resp)
}

func (hg *apiHandlerGroup) getStatus(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)
	status, err := hg.repo.GetStatusByStatusId(vars["platform"], vars["domain"], vars["id"])
	if err != nil {
		hg.logger.Errorf("Failed to get status %s: %v", vars["id"], err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if status == nil {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}

	resp := toStatusResp(status)
	attachments, err := hg.repo.GetAttachments(status.Id)
	if err != nil {
		hg.logger.Errorf("Failed to get attachments of status %s: %v", vars["id"], err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	for _, att := range attachments {
		resp.Attachments = append(resp.Attachments, &attachmentResp{
			Kind:       att.Kind,
			AssetUrl:   att.AssetUrl,
			PreviewUrl: att.PreviewUrl,
			Width:      att.Width,
			Height:     att.Height,
			DurationMs: att.DurationMs,
			AltText:    att.AltText,
		})
	}
	writeJsonResponse(hg.logger, w, resp)
}

type timelineResp struct {
	Total    int           `json:"total"`
	Statuses []*statusResp `json:"statuses"`
}

type statusResp struct {
	Id            int64             `json:"id"`
	Platform      string            `json:"platform"`
	Domain        string            `json:"domain"`
	StatusId      string            `json:"status_id"`
	Text          string            `json:"text"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ReplyCount    int64             `json:"reply_count"`
	RepostCount   int64             `json:"repost_count"`
	QuoteCount    int64             `json:"quote_count"`
	LikeCount     int64             `json:"like_count"`
	Language      string            `json:"language,omitempty"`
	Source        string            `json:"source,omitempty"`
	ReplySettings string            `json:"reply_settings,omitempty"`
	AuthorId      int64             `json:"author_id"`
	RepostOfId    *int64            `json:"repost_of_id,omitempty"`
	QuoteOfId     *int64            `json:"quote_of_id,omitempty"`
	ReplyToId     *int64            `json:"reply_to_id,omitempty"`
	Attachments   []*attachmentResp `json:"attachments,omitempty"`
}

type attachmentResp struct {
	Kind       string `json:"kind"`
	AssetUrl   string `json:"asset_url"`
	PreviewUrl string `json:"preview_url,omitempty"`
	Width      int64  `json:"width,omitempty"`
	Height     int64  `json:"height,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	AltText    string `json:"alt_text,omitempty"`
}

func toStatusResp(status *dal.Status) *statusResp {
	return &statusResp{
		Id:            status.Id,
		Platform:      status.Platform,
		Domain:        status.Domain,
		StatusId:      status.StatusId,
		Text:          status.Text,
		CreatedAt:     status.CreatedAt,
		UpdatedAt:     status.UpdatedAt,
		ReplyCount:    status.ReplyCount,
		RepostCount:   status.RepostCount,
		QuoteCount:    status.QuoteCount,
		LikeCount:     status.LikeCount,
		Language:      status.Language,
		Source:        status.Source,
		ReplySettings: status.ReplySettings,
		AuthorId:      status.AuthorId,
		RepostOfId:    nullToPtr(status.RepostOfId),
		QuoteOfId:     nullToPtr(status.QuoteOfId),
		ReplyToId:     nullToPtr(status.ReplyToId),
	}
}

func nullToPtr(val sql.NullInt64) *int64 {
	if !val.Valid {
		return nil
	}
	res := val.Int64
	return &res
}

func queryInt(r *http.Request, name string, dflt int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return dflt
	}
	val, err := strconv.Atoi(str)
	if err != nil || val < 0 {
		return dflt
	}
	return val
}
