package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-api/core/interfaces"
)

type warning struct {
	msg    string
	fields map[string]interface{}
}

type MockLogger struct {
	warnings []warning
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.warnings = append(m.warnings, warning{msg: msg, fields: fields})
}

func newTestCache(t *testing.T, logger Logger) *Client {
	t.Helper()

	client, err := NewSQLiteCacheWithLogger(filepath.Join(t.TempDir(), "cache.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func TestClient_SetGetDelete(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "bookshelf:progress", []byte(`{"a":1}`), time.Hour))

	got, err := cache.Get(ctx, "bookshelf:progress")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, cache.Delete(ctx, "bookshelf:progress"))

	_, err = cache.Get(ctx, "bookshelf:progress")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestClient_MissingKey(t *testing.T) {
	cache := newTestCache(t, nil)

	_, err := cache.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestClient_ZeroTTLNeverExpires(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), 0))
	cache.cleanup()

	got, err := cache.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestClient_ExpiredEntry(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	// Stored with an expiry already in the past
	_, err := cache.db.Exec(setSQL, "old", []byte("v"), time.Now().Add(-time.Minute).Unix())
	require.NoError(t, err)

	_, err = cache.Get(ctx, "old")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["expired_entries"])

	cache.cleanup()

	stats, err = cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["total_entries"])
}

func TestClient_Clear(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, cache.Clear(ctx))

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["total_entries"])
}

func TestClient_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	first, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "bookshelf:history", []byte("[]"), 0))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "bookshelf:history")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestClient_BinaryRoundTrip(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, cache.Set(ctx, "bytes", data, time.Hour))

	got, err := cache.Get(ctx, "bytes")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestClient_InjectionKeysAreInert(t *testing.T) {
	logger := &MockLogger{}
	cache := newTestCache(t, logger)
	ctx := context.Background()

	keys := []string{
		"key'; DROP TABLE cache; --",
		"key' OR '1'='1",
		"key' UNION SELECT null, null, null--",
		"key/*with*/comments",
	}

	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, []byte(key), time.Hour), key)
	}

	for _, key := range keys {
		got, err := cache.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, key, string(got))
	}

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, len(keys), stats["total_entries"])

	patterns := make(map[string]bool)
	for _, w := range logger.warnings {
		patterns[w.fields["pattern"].(string)] = true
	}
	assert.True(t, patterns["'"])
	assert.True(t, patterns[";"])
	assert.True(t, patterns["--"])
}

func TestValidateKey(t *testing.T) {
	assert.Error(t, ValidateKey("", nil))
	assert.Error(t, ValidateKey(strings.Repeat("k", maxKeyLength+1), nil))
	assert.Error(t, ValidateKey("a\x00b", nil))
	assert.NoError(t, ValidateKey("bookshelf:progress", nil))
}

func TestValidateKey_PreviewTruncated(t *testing.T) {
	logger := &MockLogger{}

	require.NoError(t, ValidateKey(strings.Repeat("x", 60)+";", logger))

	require.Len(t, logger.warnings, 1)
	assert.Equal(t, strings.Repeat("x", 50)+"...", logger.warnings[0].fields["key_preview"])
}

func TestValidateValue(t *testing.T) {
	assert.Error(t, ValidateValue(nil))
	assert.Error(t, ValidateValue(make([]byte, maxValueLength+1)))
	assert.NoError(t, ValidateValue([]byte("ok")))
}

func TestClient_RejectsEmptyValue(t *testing.T) {
	cache := newTestCache(t, nil)

	err := cache.Set(context.Background(), "k", nil, time.Hour)

	assert.EqualError(t, err, "value cannot be empty")
}
