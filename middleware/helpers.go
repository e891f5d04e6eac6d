package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

var ErrNoClaims = errors.New("user claims not found in context")

func WithClaims(ctx context.Context, claims *services.TokenClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func GetClaims(ctx context.Context) (*services.TokenClaims, error) {
	claims, ok := ctx.Value(userContextKey).(*services.TokenClaims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

func GetActor(ctx context.Context) (services.Actor, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}
