package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	Email string `json:"username"`
	jwt.RegisteredClaims
}

// Generator issues and verifies the signed session tokens. Verification
// is purely a function of the token and the clock; there is no
// server-side session table and therefore no revocation.
type Generator struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewGenerator(secret string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (g *Generator) AccessTTL() time.Duration {
	return g.accessTTL
}

// NewAccessToken issues a short-lived token for subject email.
func (g *Generator) NewAccessToken(email string) (string, error) {
	return g.issue(email, g.accessTTL)
}

// NewRefreshToken issues a longer-lived token for subject email. The
// verification contract is identical to access tokens; the two kinds
// differ only in TTL and caller intent.
func (g *Generator) NewRefreshToken(email string) (string, error) {
	return g.issue(email, g.refreshTTL)
}

// GeneratePair issues an access and a refresh token for the same subject.
func (g *Generator) GeneratePair(email string) (accessToken, refreshToken string, err error) {
	const op = "jwt.Generator.GeneratePair"

	accessToken, err = g.NewAccessToken(email)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err = g.NewRefreshToken(email)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, refreshToken, nil
}

func (g *Generator) issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	// ttl == 0 issues a token without an expiry claim.
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Verify checks the signature and expiry and returns the subject email.
func (g *Generator) Verify(tokenString string) (string, error) {
	const op = "jwt.Generator.Verify"

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return "", fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if !token.Valid || claims.Email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return claims.Email, nil
}

// Refresh verifies refreshToken and, on success, issues a new access
// token for the same subject. Verification failures propagate unchanged
// and no token is issued.
func (g *Generator) Refresh(refreshToken string) (string, error) {
	const op = "jwt.Generator.Refresh"

	email, err := g.Verify(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := g.NewAccessToken(email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, nil
}
