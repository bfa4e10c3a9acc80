package bilibili

import (
	"encoding/json"
	"time"
)

// envelope is the platform's standard response wrapper
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	TTL     int             `json:"ttl"`
	Data    json.RawMessage `json:"data"`
}

// FollowRecord is one entry of a following list. The payload passes through
// the system unchanged; only these fields are interpreted.
type FollowRecord struct {
	MID   int64  `json:"mid"`
	Uname string `json:"uname"`
	Sign  string `json:"sign"`
	MTime int64  `json:"mtime"`
}

// FollowedAt returns the follow timestamp as a time value. Zero MTime means
// the platform did not report one.
func (r FollowRecord) FollowedAt() time.Time {
	if r.MTime == 0 {
		return time.Time{}
	}
	return time.Unix(r.MTime, 0)
}

// FollowingPage is one page of the following list
type FollowingPage struct {
	List  []FollowRecord `json:"list"`
	Total int            `json:"total"`
}

// NavInfo is the signed-in account's identity as reported by the nav
// endpoint
type NavInfo struct {
	IsLogin bool   `json:"isLogin"`
	MID     int64  `json:"mid"`
	Uname   string `json:"uname"`
}
