package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSession() *Session {
	return &Session{
		Profile:    "default",
		SESSDATA:   "abc123%2Cdef",
		BiliJCT:    "csrf-token-value",
		DedeUserID: "12345678",
	}
}

func TestCookieHeader(t *testing.T) {
	sess := validSession()
	assert.Equal(t,
		"SESSDATA=abc123%2Cdef; bili_jct=csrf-token-value; DedeUserID=12345678",
		sess.CookieHeader())

	sess.DedeUserID = ""
	assert.Equal(t, "SESSDATA=abc123%2Cdef; bili_jct=csrf-token-value", sess.CookieHeader())
}

func TestCSRF(t *testing.T) {
	assert.Equal(t, "csrf-token-value", validSession().CSRF())
}

func TestUserID(t *testing.T) {
	id, err := validSession().UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(12345678), id)

	sess := validSession()
	sess.DedeUserID = ""
	_, err = sess.UserID()
	assert.Error(t, err)

	sess.DedeUserID = "not-a-number"
	_, err = sess.UserID()
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, validSession().Valid())

	var nilSess *Session
	assert.False(t, nilSess.Valid())

	sess := validSession()
	sess.SESSDATA = ""
	assert.False(t, sess.Valid())

	sess = validSession()
	sess.Profile = ""
	assert.False(t, sess.Valid())
}

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("BILIFOLLOW_SESSDATA", "env-sessdata")
	t.Setenv("BILIFOLLOW_BILI_JCT", "env-jct")
	t.Setenv("BILIFOLLOW_DEDEUSERID", "42")

	store := NewEnvironmentStore()
	sess, err := store.Retrieve("")
	require.NoError(t, err)

	assert.Equal(t, "default", sess.Profile)
	assert.Equal(t, "env-sessdata", sess.SESSDATA)
	assert.Equal(t, "env-jct", sess.BiliJCT)
	assert.Equal(t, "42", sess.DedeUserID)
	assert.True(t, store.Exists(""))
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("BILIFOLLOW_SESSDATA", "")
	t.Setenv("BILIFOLLOW_BILI_JCT", "")

	store := NewEnvironmentStore()
	_, err := store.Retrieve("default")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, store.Exists("default"))

	assert.ErrorIs(t, store.Store(validSession()), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("default"), ErrStoreUnavailable)
}

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockStore()
	sess := validSession()

	require.NoError(t, store.Store(sess))
	assert.True(t, store.Exists("default"))

	got, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, sess.SESSDATA, got.SESSDATA)

	require.NoError(t, store.Delete("default"))
	assert.False(t, store.Exists("default"))
}

func TestManagerFallbackChain(t *testing.T) {
	failing := NewMockStore()
	failing.FailStore = true
	working := NewMockStore()

	mgr := NewManagerWithStores(failing, working)

	sess := validSession()
	require.NoError(t, mgr.Store(sess))

	// The failing store rejected the write; the fallback holds it
	assert.False(t, failing.Exists("default"))
	assert.True(t, working.Exists("default"))

	got, err := mgr.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, sess.BiliJCT, got.BiliJCT)
}

func TestManagerRejectsInvalidSession(t *testing.T) {
	mgr := NewManagerWithStores(NewMockStore())
	err := mgr.Store(&Session{Profile: "p"})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestManagerRetrieveDefaultSingleSession(t *testing.T) {
	store := NewMockStore()
	sess := validSession()
	sess.Profile = "main"
	require.NoError(t, store.Store(sess))

	mgr := NewManagerWithStores(store)
	got, err := mgr.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "main", got.Profile)
}

func TestManagerDeleteMissing(t *testing.T) {
	mgr := NewManagerWithStores(NewMockStore())
	assert.ErrorIs(t, mgr.Delete("nobody"), ErrSessionNotFound)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("BILIFOLLOW_STORE_KEY", "test-passphrase")

	path := t.TempDir() + "/sessions.enc"
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	sess := validSession()
	require.NoError(t, store.Store(sess))

	// A fresh store instance with the same passphrase can read it back
	store2, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	got, err := store2.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, sess.SESSDATA, got.SESSDATA)
	assert.Equal(t, sess.BiliJCT, got.BiliJCT)

	list, err := store2.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store2.Delete("default"))
	_, err = store2.Retrieve("default")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEncryptedFileStoreWrongKey(t *testing.T) {
	path := t.TempDir() + "/sessions.enc"

	t.Setenv("BILIFOLLOW_STORE_KEY", "correct-key")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(validSession()))

	t.Setenv("BILIFOLLOW_STORE_KEY", "wrong-key")
	store2, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store2.Retrieve("default")
	assert.Error(t, err)
}
