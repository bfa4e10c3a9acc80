package bilibili

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the platform's API host
	BaseURL = "https://api.bilibili.com"

	// FollowingsEndpoint lists the accounts a user follows, paginated
	FollowingsEndpoint = "/x/relation/followings"

	// ModifyEndpoint mutates a relation (follow, unfollow)
	ModifyEndpoint = "/x/relation/modify"

	// NavEndpoint returns the signed-in account's identity
	NavEndpoint = "/x/web-interface/nav"

	// DefaultPageSize is the followings page size used when none is configured
	DefaultPageSize = 50

	// MaxPageSize is the largest page the platform accepts
	MaxPageSize = 50
)

// Relation modification actions accepted by ModifyEndpoint
const (
	ActFollow   = 1
	ActUnfollow = 2
)

// Platform response codes. The envelope code, not the HTTP status, carries
// most of the signal.
const (
	CodeOK               = 0
	CodeNotLoggedIn      = -101
	CodeRiskControl      = -352
	CodeAlreadyFollowing = 22013
	CodeNotFollowing     = 22015
	CodeUnfollowTooOften = 22016
)

// FollowingsURL constructs the URL for one page of a user's following list
func FollowingsURL(base string, vmid int64, page, pageSize int) string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("vmid", strconv.FormatInt(vmid, 10))
	params.Set("pn", strconv.Itoa(page))
	params.Set("ps", strconv.Itoa(pageSize))
	params.Set("order", "desc")

	return fmt.Sprintf("%s%s?%s", base, FollowingsEndpoint, params.Encode())
}

// ModifyURL constructs the URL for relation mutations
func ModifyURL(base string) string {
	return base + ModifyEndpoint
}

// NavURL constructs the URL for the account identity endpoint
func NavURL(base string) string {
	return base + NavEndpoint
}

// ModifyForm builds the form body for a follow or unfollow mutation. The
// CSRF token is the bili_jct cookie value.
func ModifyForm(mid int64, act int, csrf string) url.Values {
	form := url.Values{}
	form.Set("fid", strconv.FormatInt(mid, 10))
	form.Set("act", strconv.Itoa(act))
	form.Set("csrf", csrf)
	return form
}
