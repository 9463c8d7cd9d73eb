package auth

import (
	"errors"
	"fmt"
	"time"

	"devconnector/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token is not valid")
	ErrExpired      = errors.New("token has expired")
)

// Subject is the identity carried in a token.
type Subject struct {
	ID string `json:"id"`
}

type Claims struct {
	User Subject `json:"user"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens with a shared secret.
type Tokens struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.JWTConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
		now:    time.Now,
	}
}

func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := &Claims{
		User: Subject{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by tokenString.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.User.ID, nil
}
