package test

import (
	"fmt"
	"roost/dto"
	"time"
)

const testDomain = "twitter.com"
const mastoDomain = "mast.example.org"

var t0 = time.Date(2023, 5, 14, 10, 0, 0, 0, time.UTC)
var t1 = t0.Add(time.Hour)
var t2 = t0.Add(2 * time.Hour)

func ptrStr(s string) *string        { return &s }
func ptrI64(n int64) *int64          { return &n }
func ptrBool(b bool) *bool           { return &b }
func ptrTime(t time.Time) *time.Time { return &t }

func makeUserV1(id string) *dto.UserV1 {
	return &dto.UserV1{
		IdStr:                id,
		Name:                 "User " + id,
		ScreenName:           "user" + id,
		Description:          ptrStr("bio of " + id),
		ProfileImageUrlHttps: ptrStr(fmt.Sprintf("https://pbs.example.com/%s.jpg", id)),
		FollowersCount:       ptrI64(10),
		FriendsCount:         ptrI64(20),
		ListedCount:          ptrI64(1),
	}
}

func makeTweetV1(id, userId, text string, createdAt time.Time) *dto.TweetV1 {
	return &dto.TweetV1{
		IdStr:         id,
		FullText:      ptrStr(text),
		CreatedAt:     dto.TimeV1{Time: createdAt},
		User:          makeUserV1(userId),
		FavoriteCount: ptrI64(3),
		RetweetCount:  ptrI64(1),
		Lang:          ptrStr("en"),
		Source:        ptrStr(`<a href="https://example.com/client" rel="nofollow">Roost Client</a>`),
	}
}

func makeUserV2(id string) *dto.UserV2 {
	return &dto.UserV2{
		Id:       id,
		Name:     "User " + id,
		Username: "user" + id,
		PublicMetrics: &dto.UserMetricsV2{
			FollowersCount: 10,
			FollowingCount: 20,
			ListedCount:    1,
		},
	}
}

func makeTweetV2(id, authorId, text string, createdAt time.Time) *dto.TweetV2 {
	return &dto.TweetV2{
		Id:        id,
		Text:      text,
		AuthorId:  ptrStr(authorId),
		CreatedAt: ptrTime(createdAt),
		Lang:      ptrStr("en"),
		PublicMetrics: &dto.TweetMetricsV2{
			RetweetCount: 1,
			ReplyCount:   2,
			LikeCount:    3,
			QuoteCount:   0,
		},
	}
}

func makeAccountMasto(id string) *dto.AccountMasto {
	return &dto.AccountMasto{
		Id:          id,
		Username:    "user" + id,
		Acct:        "user" + id,
		DisplayName: "User " + id,
		Note:        ptrStr("<p>bio of " + id + "</p>"),
	}
}

func makeStatusMasto(id, accountId, content string, createdAt time.Time) *dto.StatusMasto {
	return &dto.StatusMasto{
		Id:        id,
		CreatedAt: createdAt,
		Content:   content,
		Account:   makeAccountMasto(accountId),
	}
}
