package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/dbx"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/credentials"
)

// RefreshManager serializes access-token refresh. Concurrent callers share a
// single physical exchange, and attempts are rate limited so a broken token
// endpoint cannot be hammered by every failing request in the app.
type RefreshManager struct {
	mu           sync.Mutex
	group        singleflight.Group
	lastAttempt  time.Time
	attemptCount int

	cooldown    time.Duration
	maxAttempts int

	db        *sql.DB
	exchanger TokenExchanger
	log       logging.Logger
	now       func() time.Time
}

func NewRefreshManager(db *sql.DB, exchanger TokenExchanger, cooldown time.Duration, maxAttempts int, log logging.Logger) *RefreshManager {
	return &RefreshManager{
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
		db:          db,
		exchanger:   exchanger,
		log:         log,
		now:         time.Now,
	}
}

func (m *RefreshManager) getCredentialsRepo() credentials.Repository {
	return credentials.NewSQLiteRepository(m.db)
}

// TryRefresh attempts to obtain a fresh access token. It returns true only
// when new tokens were obtained and persisted. All failure modes, including
// rate limiting and forced logout, report false; the caller decides what
// error to surface based on the credential state afterwards.
func (m *RefreshManager) TryRefresh(ctx context.Context) bool {
	v, _, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx), nil
	})
	ok, _ := v.(bool)
	return ok
}

func (m *RefreshManager) refresh(ctx context.Context) bool {
	if !m.allowAttempt() {
		m.log.Debug(ctx, "token refresh suppressed by rate limit")
		return false
	}

	creds := m.getCredentialsRepo()

	refreshToken, err := creds.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		m.log.Error(ctx, "failed to read refresh token", "error", err)
		return false
	}
	if refreshToken == "" {
		m.forceLogout(ctx)
		return false
	}

	// A locally expired refresh token cannot succeed remotely; log out
	// without a network round trip.
	if expired, known := tokenExpired(refreshToken, m.now()); known && expired {
		m.log.Info(ctx, "refresh token expired, logging out")
		m.forceLogout(ctx)
		return false
	}

	tokens, err := m.exchanger.Exchange(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			m.log.Info(ctx, "refresh token rejected, logging out")
			m.forceLogout(ctx)
			return false
		}
		m.log.Warn(ctx, "token refresh failed", "error", err)
		return false
	}

	if err := m.saveTokens(ctx, tokens); err != nil {
		m.log.Error(ctx, "failed to persist refreshed tokens", "error", err)
		return false
	}

	m.mu.Lock()
	m.attemptCount = 0
	m.mu.Unlock()

	m.log.Debug(ctx, "access token refreshed")
	return true
}

// allowAttempt admits at most maxAttempts physical refreshes per cooldown
// window. The window restarts once cooldown has elapsed since its first
// attempt.
func (m *RefreshManager) allowAttempt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.lastAttempt.IsZero() || now.Sub(m.lastAttempt) >= m.cooldown {
		m.lastAttempt = now
		m.attemptCount = 1
		return true
	}
	if m.attemptCount >= m.maxAttempts {
		return false
	}
	m.attemptCount++
	return true
}

func (m *RefreshManager) saveTokens(ctx context.Context, tokens *Tokens) error {
	return dbx.WithTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, tokens.AccessToken); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.IDTokenKey, tokens.IDToken); err != nil {
			return err
		}
		return repo.Set(ctx, common.RefreshTokenKey, tokens.RefreshToken)
	})
}

// forceLogout wipes every stored credential so the rest of the app observes
// a logged-out state instead of retrying with a dead token.
func (m *RefreshManager) forceLogout(ctx context.Context) {
	if err := m.getCredentialsRepo().Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear credentials on forced logout", "error", err)
	}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature. Verification belongs to the server; locally the claim is only a
// hint to skip doomed network calls. known is false for opaque tokens.
func tokenExpired(token string, now time.Time) (expired bool, known bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, false
	}
	return exp.Time.Before(now), true
}
