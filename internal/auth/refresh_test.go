package auth

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/credentials"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

// makeJWT builds an unsigned token with the given claims; claim parsing does
// not verify signatures so a fake signature is enough.
func makeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload := enc(claims)
	return fmt.Sprintf("%s.%s.%s", header, payload, base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

type fakeExchanger struct {
	tokens *Tokens
	err    error
	calls  atomic.Int64
}

func (f *fakeExchanger) Exchange(ctx context.Context, refreshToken string) (*Tokens, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func newManager(t *testing.T, db *sql.DB, ex TokenExchanger) *RefreshManager {
	t.Helper()
	return NewRefreshManager(db, ex, time.Minute, 3, logging.NewNopLogger())
}

func TestTryRefresh_Success(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, "refresh-old"))

	ex := &fakeExchanger{tokens: &Tokens{
		AccessToken:  "access-new",
		IDToken:      "id-new",
		RefreshToken: "refresh-new",
	}}
	m := newManager(t, db, ex)

	assert.True(t, m.TryRefresh(ctx))

	access, err := creds.Get(ctx, common.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "access-new", access)
	refresh, err := creds.Get(ctx, common.RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", refresh)
}

func TestTryRefresh_NoRefreshToken(t *testing.T) {
	db := setupDB(t)
	ex := &fakeExchanger{}
	m := newManager(t, db, ex)

	assert.False(t, m.TryRefresh(context.Background()))
	assert.Equal(t, int64(0), ex.calls.Load())
}

func TestTryRefresh_RejectedTokenForcesLogout(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	require.NoError(t, creds.Set(ctx, common.AccessTokenKey, "access-old"))
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, "refresh-old"))

	m := newManager(t, db, &fakeExchanger{err: ErrInvalidRefreshToken})

	assert.False(t, m.TryRefresh(ctx))

	for _, key := range []string{common.AccessTokenKey, common.RefreshTokenKey} {
		got, err := creds.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "", got, key)
	}
}

func TestTryRefresh_ExpiredTokenSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	expired := makeJWT(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, expired))

	ex := &fakeExchanger{}
	m := newManager(t, db, ex)

	assert.False(t, m.TryRefresh(ctx))
	assert.Equal(t, int64(0), ex.calls.Load())

	got, err := creds.Get(ctx, common.RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestTryRefresh_OpaqueTokenStillExchanged(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, "opaque-token"))

	ex := &fakeExchanger{tokens: &Tokens{AccessToken: "a", RefreshToken: "r"}}
	m := newManager(t, db, ex)

	assert.True(t, m.TryRefresh(ctx))
	assert.Equal(t, int64(1), ex.calls.Load())
}

func TestTryRefresh_RateLimited(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, "refresh-old"))

	ex := &fakeExchanger{err: fmt.Errorf("temporary failure")}
	m := newManager(t, db, ex)

	for i := 0; i < 5; i++ {
		assert.False(t, m.TryRefresh(ctx))
	}
	assert.Equal(t, int64(3), ex.calls.Load())

	// A new window opens after the cooldown.
	base := time.Now()
	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	m.TryRefresh(ctx)
	assert.Equal(t, int64(4), ex.calls.Load())
}

func TestTryRefresh_ConcurrentCallersShareOneExchange(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := credentials.NewSQLiteRepository(db)
	require.NoError(t, creds.Set(ctx, common.RefreshTokenKey, "refresh-old"))

	started := make(chan struct{})
	release := make(chan struct{})
	ex := &blockingExchanger{started: started, release: release}
	m := newManager(t, db, ex)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.TryRefresh(ctx)
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), ex.calls.Load())
	for _, ok := range results {
		assert.True(t, ok)
	}
}

type blockingExchanger struct {
	started     chan struct{}
	release     chan struct{}
	calls       atomic.Int64
	startedOnce sync.Once
}

func (b *blockingExchanger) Exchange(ctx context.Context, refreshToken string) (*Tokens, error) {
	b.calls.Add(1)
	b.startedOnce.Do(func() { close(b.started) })
	<-b.release
	return &Tokens{AccessToken: "a", IDToken: "i", RefreshToken: "r"}, nil
}

func TestCurrentUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves sub claim", func(t *testing.T) {
		db := setupDB(t)
		creds := credentials.NewSQLiteRepository(db)
		idToken := makeJWT(t, map[string]any{"sub": "user-42"})
		require.NoError(t, creds.Set(ctx, common.IDTokenKey, idToken))

		got, err := CurrentUserID(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, "user-42", got)
	})

	t.Run("no id token", func(t *testing.T) {
		db := setupDB(t)
		creds := credentials.NewSQLiteRepository(db)

		_, err := CurrentUserID(ctx, creds)
		assert.ErrorIs(t, err, common.ErrNoCurrentUser)
	})

	t.Run("malformed token", func(t *testing.T) {
		db := setupDB(t)
		creds := credentials.NewSQLiteRepository(db)
		require.NoError(t, creds.Set(ctx, common.IDTokenKey, "not-a-jwt"))

		_, err := CurrentUserID(ctx, creds)
		assert.ErrorIs(t, err, common.ErrNoCurrentUser)
	})
}
