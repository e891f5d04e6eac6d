package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Dosada05/football-tournaments/models"
)

const (
	ClaimUserID = "user_id"
	ClaimRole   = "role"
	ClaimJTI    = "jti"
)

// TokenClaims: разобранные claims сессионного токена.
type TokenClaims struct {
	UserID    int
	Role      models.UserRole
	JTI       string
	ExpiresAt time.Time
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue подписывает HS256-токен с user_id, role и уникальным jti.
func (m *TokenManager) Issue(user *models.User) (string, *TokenClaims, error) {
	now := m.now()
	claims := &TokenClaims{
		UserID:    user.ID,
		Role:      user.Role,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimRole:   string(user.Role),
		ClaimJTI:    claims.JTI,
		"exp":       claims.ExpiresAt.Unix(),
		"iat":       now.Unix(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

func (m *TokenManager) Parse(tokenString string) (*TokenClaims, error) {
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationFailed
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	if !mapClaims.VerifyExpiresAt(m.now().Unix(), true) {
		return nil, ErrAuthenticationFailed
	}

	userID, err := intClaim(mapClaims, ClaimUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	roleStr, _ := mapClaims[ClaimRole].(string)
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role claim %q", ErrAuthenticationFailed, roleStr)
	}
	jti, _ := mapClaims[ClaimJTI].(string)
	if jti == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrAuthenticationFailed)
	}
	exp, _ := mapClaims["exp"].(float64)

	return &TokenClaims{
		UserID:    userID,
		Role:      role,
		JTI:       jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim", name)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", name, raw)
	}
	if f != float64(int(f)) || f <= 0 {
		return 0, errors.New("user id claim is not a positive integer")
	}
	return int(f), nil
}
