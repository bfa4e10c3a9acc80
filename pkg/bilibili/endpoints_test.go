package bilibili

import (
	"net/url"
	"testing"
)

func TestFollowingsURL(t *testing.T) {
	raw := FollowingsURL("https://api.example.com", 12345, 3, 50)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Path != FollowingsEndpoint {
		t.Errorf("path = %q, want %q", u.Path, FollowingsEndpoint)
	}

	q := u.Query()
	if got := q.Get("vmid"); got != "12345" {
		t.Errorf("vmid = %q, want 12345", got)
	}
	if got := q.Get("pn"); got != "3" {
		t.Errorf("pn = %q, want 3", got)
	}
	if got := q.Get("ps"); got != "50" {
		t.Errorf("ps = %q, want 50", got)
	}
	if got := q.Get("order"); got != "desc" {
		t.Errorf("order = %q, want desc", got)
	}
}

func TestFollowingsURLClampsArguments(t *testing.T) {
	u, err := url.Parse(FollowingsURL("https://api.example.com", 1, 0, 999))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if got := q.Get("pn"); got != "1" {
		t.Errorf("page below one should clamp to 1, got %q", got)
	}
	if got := q.Get("ps"); got != "50" {
		t.Errorf("oversized page size should clamp to 50, got %q", got)
	}
}

func TestModifyForm(t *testing.T) {
	form := ModifyForm(42, ActUnfollow, "token")

	if got := form.Get("fid"); got != "42" {
		t.Errorf("fid = %q, want 42", got)
	}
	if got := form.Get("act"); got != "2" {
		t.Errorf("act = %q, want 2", got)
	}
	if got := form.Get("csrf"); got != "token" {
		t.Errorf("csrf = %q, want token", got)
	}
}
