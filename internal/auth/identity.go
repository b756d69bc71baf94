package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/credentials"
)

// CurrentUserID resolves the signed-in user from the stored id token's sub
// claim. The signature is not checked locally; the token was accepted by the
// backend when it was issued and only identifies rows in the local database.
func CurrentUserID(ctx context.Context, creds credentials.Repository) (string, error) {
	idToken, err := creds.Get(ctx, common.IDTokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read id token: %w", err)
	}
	if idToken == "" {
		return "", common.ErrNoCurrentUser
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", common.ErrNoCurrentUser
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", common.ErrNoCurrentUser
	}
	return sub, nil
}
