package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilifollow/pkg/config"
	"bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/pacer"
	"bilifollow/pkg/ratelimit"
	"bilifollow/pkg/session"
)

func testSession() *session.Session {
	return &session.Session{
		Profile:    "test",
		SESSDATA:   "sess-value",
		BiliJCT:    "csrf-token",
		DedeUserID: "12345",
		UserAgent:  "test-agent/1.0",
	}
}

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.APIConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 5,
		PageSize:       50,
	}
	client := NewClient(cfg, testSession(), ratelimit.None{}, logger.NewTestLogger())
	return client, server
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	raw, _ := json.Marshal(data)
	resp := map[string]interface{}{
		"code":    code,
		"message": message,
		"ttl":     1,
		"data":    json.RawMessage(raw),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestFollowingsParsesPage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, FollowingsEndpoint, r.URL.Path)
		assert.Equal(t, "12345", r.URL.Query().Get("vmid"))
		assert.Equal(t, "2", r.URL.Query().Get("pn"))
		assert.Equal(t, "50", r.URL.Query().Get("ps"))
		assert.Contains(t, r.Header.Get("Cookie"), "SESSDATA=sess-value")
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		writeEnvelope(w, CodeOK, "0", FollowingPage{
			Total: 2,
			List: []FollowRecord{
				{MID: 100, Uname: "alpha", MTime: 1700000000},
				{MID: 200, Uname: "beta"},
			},
		})
	}))

	page, err := client.Followings(context.Background(), 2, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, int64(100), page.List[0].MID)
	assert.Equal(t, "alpha", page.List[0].Uname)
	assert.False(t, page.List[0].FollowedAt().IsZero())
	assert.True(t, page.List[1].FollowedAt().IsZero())
}

func TestFollowingsNotLoggedIn(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, CodeNotLoggedIn, "account is not logged in", nil)
	}))

	_, err := client.Followings(context.Background(), 1, 50)
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeAuth, typed.Type)
	assert.Equal(t, CodeNotLoggedIn, typed.Code)
}

func TestAllFollowingsWalksPages(t *testing.T) {
	pages := map[string][]FollowRecord{
		"1": make([]FollowRecord, 0, 50),
		"2": {{MID: 9000, Uname: "last"}},
	}
	for i := 0; i < 50; i++ {
		pages["1"] = append(pages["1"], FollowRecord{MID: int64(i + 1), Uname: fmt.Sprintf("user%d", i+1)})
	}

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, ok := pages[r.URL.Query().Get("pn")]
		require.True(t, ok, "unexpected page requested")
		writeEnvelope(w, CodeOK, "0", FollowingPage{List: list, Total: 51})
	}))

	p := pacer.New(pacer.Config{BaseDelay: 0, Jitter: 0})
	all, err := client.AllFollowings(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, all, 51)
	assert.Equal(t, int64(9000), all[50].MID)
}

func TestAllFollowingsRetriesThrottledPage(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, CodeOK, "0", FollowingPage{
			List:  []FollowRecord{{MID: 1, Uname: "only"}},
			Total: 1,
		})
	}))

	p := pacer.New(pacer.Config{BaseDelay: 0, Jitter: 0, MaxDelay: time.Millisecond})
	all, err := client.AllFollowings(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 0, p.Failures(), "success should reset the failure streak")
}

func TestAllFollowingsAbortsAfterRepeatedThrottling(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	p := pacer.New(pacer.Config{
		BaseDelay:              0,
		Jitter:                 0,
		MaxDelay:               time.Millisecond,
		MaxConsecutiveFailures: 2,
	})
	records, err := client.AllFollowings(context.Background(), p)
	require.Error(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 3, attempts, "aborts once failures exceed the ceiling")
}

func TestFollowSendsForm(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ModifyEndpoint, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("fid"))
		assert.Equal(t, "1", r.PostForm.Get("act"))
		assert.Equal(t, "csrf-token", r.PostForm.Get("csrf"))
		writeEnvelope(w, CodeOK, "0", nil)
	}))

	require.NoError(t, client.Follow(context.Background(), 42))
}

func TestFollowAlreadyFollowingIsSuccess(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, CodeAlreadyFollowing, "already following", nil)
	}))

	assert.NoError(t, client.Follow(context.Background(), 42))
}

func TestUnfollowNotFollowingIsSuccess(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2", r.PostForm.Get("act"))
		writeEnvelope(w, CodeNotFollowing, "not following", nil)
	}))

	assert.NoError(t, client.Unfollow(context.Background(), 42))
}

func TestUnfollowFrequencyLimitIsRateLimit(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, CodeUnfollowTooOften, "operating too often", nil)
	}))

	err := client.Unfollow(context.Background(), 42)
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeRateLimit, typed.Type)
}

func TestRiskControlIsRateLimit(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, CodeRiskControl, "risk control triggered", nil)
	}))

	err := client.Follow(context.Background(), 42)
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeRateLimit, typed.Type)
	assert.Equal(t, CodeRiskControl, typed.Code)
}

func TestThrottledStatusCarriesRetryAfter(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusPreconditionFailed)
	}))

	err := client.Follow(context.Background(), 42)
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeRateLimit, typed.Type)
	assert.Equal(t, 7*time.Second, typed.RetryAfter)
}

func TestServerErrorIsTyped(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := client.Follow(context.Background(), 42)
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeServerError, typed.Type)
}

func TestNavVerifiesSession(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, NavEndpoint, r.URL.Path)
		writeEnvelope(w, CodeOK, "0", NavInfo{IsLogin: true, MID: 12345, Uname: "tester"})
	}))

	info, err := client.Nav(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12345), info.MID)
	assert.Equal(t, "tester", info.Uname)
}

func TestNavRejectsLoggedOutSession(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, CodeOK, "0", NavInfo{IsLogin: false})
	}))

	_, err := client.Nav(context.Background())
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeAuth, typed.Type)
}

func TestMalformedEnvelopeIsParsingError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.Nav(context.Background())
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypeParsing, typed.Type)
}
