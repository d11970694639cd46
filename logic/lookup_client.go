package logic

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"github.com/go-fed/httpsig"
	"io"
	"net/http"
	"net/url"
	"roost/dto"
	"roost/shared"
	"strings"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_lookup_client.go -package mocks roost/logic ILookupClient

const lookupTimeoutSec = 10

// ILookupClient fetches full status entities for a set of remote IDs. One
// chunk of IDs may yield more than one batch: Twitter answers through both
// API generations because each carries fields the other lacks.
type ILookupClient interface {
	LookupStatuses(ctx context.Context, acct *shared.Account, ids []string) ([]*Batch, error)
}

type lookupClient struct {
	cfg       *shared.Config
	logger    shared.ILogger
	userAgent shared.IUserAgent
	privKey   *rsa.PrivateKey
}

func NewLookupClient(cfg *shared.Config, logger shared.ILogger, userAgent shared.IUserAgent) ILookupClient {

	res := lookupClient{
		cfg:       cfg,
		logger:    logger,
		userAgent: userAgent,
	}
	if cfg.Secrets.SigPrivKey != "" {
		privKey, err := parseRsaPrivKey(cfg.Secrets.SigPrivKey)
		if err != nil {
			logger.Warnf("Failed to parse lookup signing key; authorized fetch disabled: %v", err)
		} else {
			res.privKey = privKey
		}
	}
	return &res
}

func (lc *lookupClient) LookupStatuses(ctx context.Context, acct *shared.Account, ids []string) ([]*Batch, error) {

	switch acct.Platform {
	case string(PlatformTwitter):
		return lc.lookupTwitter(ctx, acct, ids)
	case string(PlatformMastodon):
		return lc.lookupMastodon(ctx, acct, ids)
	}
	return nil, fmt.Errorf("unknown platform: %s", acct.Platform)
}

func (lc *lookupClient) lookupTwitter(ctx context.Context, acct *shared.Account, ids []string) ([]*Batch, error) {

	networkDate := time.Now().UTC()
	var res []*Batch

	// v1 carries favorited/retweeted flags and full video variants
	v1Url := fmt.Sprintf("%s/1.1/statuses/lookup.json?id=%s&tweet_mode=extended&include_ext_alt_text=true",
		strings.TrimRight(acct.APIBaseUrl, "/"), url.QueryEscape(strings.Join(ids, ",")))
	var tweetsV1 []*dto.TweetV1
	errV1 := lc.getJson(ctx, acct, v1Url, &tweetsV1)
	if errV1 == nil {
		res = append(res, BatchFromTwitterV1(acct.Domain, tweetsV1, networkDate))
	} else {
		lc.logger.Warnf("v1 lookup for %d statuses failed: %v", len(ids), errV1)
	}

	// v2 carries polls and reply settings
	v2Url := fmt.Sprintf("%s/2/tweets?ids=%s"+
		"&expansions=author_id,attachments.media_keys,attachments.poll_ids,geo.place_id,referenced_tweets.id"+
		"&tweet.fields=conversation_id,created_at,public_metrics,reply_settings,lang,source"+
		"&media.fields=type,url,preview_image_url,width,height,duration_ms"+
		"&poll.fields=options,voting_status,end_datetime",
		strings.TrimRight(acct.APIBaseUrl, "/"), url.QueryEscape(strings.Join(ids, ",")))
	var lookupV2 dto.LookupV2
	errV2 := lc.getJson(ctx, acct, v2Url, &lookupV2)
	if errV2 == nil {
		res = append(res, BatchFromTwitterV2(acct.Domain, lookupV2.Data, lookupV2.Includes, networkDate))
	} else {
		lc.logger.Warnf("v2 lookup for %d statuses failed: %v", len(ids), errV2)
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("both lookups failed: %v; %v", errV1, errV2)
	}
	return res, nil
}

// Mastodon has no bulk lookup endpoint; statuses are fetched one by one.
func (lc *lookupClient) lookupMastodon(ctx context.Context, acct *shared.Account, ids []string) ([]*Batch, error) {

	networkDate := time.Now().UTC()
	var statuses []*dto.StatusMasto
	for _, id := range ids {
		statusUrl := fmt.Sprintf("%s/api/v1/statuses/%s",
			strings.TrimRight(acct.APIBaseUrl, "/"), url.PathEscape(id))
		var status dto.StatusMasto
		if err := lc.getJson(ctx, acct, statusUrl, &status); err != nil {
			lc.logger.Warnf("Mastodon lookup of status %s failed: %v", id, err)
			continue
		}
		statuses = append(statuses, &status)
	}
	if len(statuses) == 0 {
		return nil, errors.New("no statuses could be fetched")
	}
	return []*Batch{BatchFromMastodon(acct.Domain, statuses, networkDate)}, nil
}

func (lc *lookupClient) getJson(ctx context.Context, acct *shared.Account, urlStr string, obj any) error {

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return err
	}
	lc.userAgent.AddUserAgent(req)
	req.Header.Set("Accept", "application/json")

	// Instances running in authorized-fetch mode want the request signed
	if acct.SigKeyId != "" && lc.privKey != nil {
		if err = lc.signRequest(req, acct.SigKeyId); err != nil {
			return err
		}
	}

	client := http.Client{}
	client.Timeout = time.Second * lookupTimeoutSec
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("got status %s: response: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(obj)
}

func (lc *lookupClient) signRequest(req *http.Request, keyId string) error {

	dateStr := time.Now().UTC().Format(http.TimeFormat)
	req.Header.Set("host", req.URL.Host)
	req.Header.Set("date", dateStr)

	signer, _, err := httpsig.NewSigner(
		[]httpsig.Algorithm{httpsig.RSA_SHA256},
		httpsig.DigestSha256,
		[]string{httpsig.RequestTarget, "Host", "date"},
		httpsig.Signature,
		0)
	if err != nil {
		return err
	}
	return signer.SignRequest(lc.privKey, keyId, req, nil)
}

func parseRsaPrivKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return key, nil
}
