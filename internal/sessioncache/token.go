package sessioncache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for a cached token that fails signature,
// expiry, or shape checks.
var ErrInvalidToken = errors.New("sessioncache: invalid token")

// Claims is the signed form of models.SessionToken.
type Claims struct {
	jwt.RegisteredClaims
	Identifier string           `json:"idf"`
	Credential string           `json:"crd"`
	Hashed     bool             `json:"hsh"`
	LoginType  models.LoginType `json:"lgt"`
}

// TokenCodec signs and verifies session tokens with HS256.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

func (c *TokenCodec) Encode(t models.SessionToken) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
		Identifier: t.Identifier,
		Credential: t.Credential,
		Hashed:     t.CredentialIsHashed,
		LoginType:  t.LoginType,
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(c.now().Add(c.ttl))
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return s, nil
}

func (c *TokenCodec) Decode(s string) (*models.SessionToken, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(s, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Identifier == "" || claims.Credential == "" || !claims.LoginType.Valid() {
		return nil, ErrInvalidToken
	}

	return &models.SessionToken{
		Identifier:         claims.Identifier,
		Credential:         claims.Credential,
		CredentialIsHashed: claims.Hashed,
		LoginType:          claims.LoginType,
	}, nil
}
