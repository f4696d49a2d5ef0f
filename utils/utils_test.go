package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(42, "alice", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(42, "alice", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)

	_, err = ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	clean := Sanitize(`Hello <script>alert(1)</script><b>world</b>`)
	assert.NotContains(t, clean, "<script>")
	assert.Contains(t, clean, "<b>world</b>")
}

func TestTokenBlacklist(t *testing.T) {
	token := "revoked-token-" + time.Now().Format("150405.000000")

	assert.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
}

func TestBlacklistIgnoresAlreadyExpired(t *testing.T) {
	token := "expired-token-" + time.Now().Format("150405.000000")

	BlacklistToken(token, time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted(token))
}

func TestSaveStateSweepsExpiredFallbackEntries(t *testing.T) {
	stale := "stale-" + time.Now().Format("150405.000000")
	stateStoreMu.Lock()
	stateStore[stale] = stateEntry{expiresAt: time.Now().Add(-time.Minute)}
	stateStoreMu.Unlock()

	SaveState("fresh-"+time.Now().Format("150405.000000"), time.Minute)

	stateStoreMu.Lock()
	_, ok := stateStore[stale]
	stateStoreMu.Unlock()
	assert.False(t, ok)
}

func TestStateIsSingleUse(t *testing.T) {
	state := "state-" + time.Now().Format("150405.000000")

	SaveState(state, time.Minute)
	assert.True(t, ConsumeState(state))
	assert.False(t, ConsumeState(state))
	assert.False(t, ConsumeState("never-saved"))
}
