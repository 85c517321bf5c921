package token

import (
	"adminboard/bizerror"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"

	DefaultAccessTokenExpiration  = 24 * time.Hour
	DefaultRefreshTokenExpiration = 30 * 24 * time.Hour

	// HS256 requires a key of at least 256 bits.
	minSecretBytes = 32
)

var DefaultCodec *Codec

type Config struct {
	Secret string
	Issuer string

	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
}

// Claims is the decoded payload of a verified token. A refresh token carries
// no username or roles: it must not be usable to smuggle a stale role snapshot
// past the permission checks.
type Claims struct {
	Kind     string   `json:"token_type"`
	UserID   types.ID `json:"userId"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`

	jwt.RegisteredClaims
}

func (c *Claims) IsAccess() bool {
	return c.Kind == KindAccess
}

func (c *Claims) IsRefresh() bool {
	return c.Kind == KindRefresh
}

type Codec struct {
	config *Config
	secret []byte
}

// ConfigFromEnv JWT_SECRET is mandatory, JWT_ISSUER defaults to the service name,
// TTLs are seconds: JWT_ACCESS_TOKEN_TTL, JWT_REFRESH_TOKEN_TTL.
func ConfigFromEnv() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("environment variable JWT_SECRET is not set")
	}
	config := &Config{
		Secret:                 secret,
		Issuer:                 os.Getenv("JWT_ISSUER"),
		AccessTokenExpiration:  DefaultAccessTokenExpiration,
		RefreshTokenExpiration: DefaultRefreshTokenExpiration,
	}
	if config.Issuer == "" {
		config.Issuer = "adminboard"
	}
	if raw := os.Getenv("JWT_ACCESS_TOKEN_TTL"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, errors.New("JWT_ACCESS_TOKEN_TTL is not a positive integer")
		}
		config.AccessTokenExpiration = time.Duration(seconds) * time.Second
	}
	if raw := os.Getenv("JWT_REFRESH_TOKEN_TTL"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, errors.New("JWT_REFRESH_TOKEN_TTL is not a positive integer")
		}
		config.RefreshTokenExpiration = time.Duration(seconds) * time.Second
	}
	return config, nil
}

// NewCodec rejects secrets shorter than 256 bits so a weak key fails at
// startup instead of at the first login.
func NewCodec(config *Config) (*Codec, error) {
	if config == nil || len(config.Secret) < minSecretBytes {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	c := *config
	if c.AccessTokenExpiration <= 0 {
		c.AccessTokenExpiration = DefaultAccessTokenExpiration
	}
	if c.RefreshTokenExpiration <= 0 {
		c.RefreshTokenExpiration = DefaultRefreshTokenExpiration
	}
	return &Codec{config: &c, secret: []byte(c.Secret)}, nil
}

func (c *Codec) IssueAccess(userId types.ID, username string, roleCodes []string) (string, error) {
	now := time.Now()
	if roleCodes == nil {
		roleCodes = []string{}
	}
	claims := &Claims{
		Kind:     KindAccess,
		UserID:   userId,
		Username: username,
		Roles:    roleCodes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.AccessTokenExpiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Codec) IssueRefresh(userId types.ID) (string, error) {
	now := time.Now()
	claims := &Claims{
		Kind:   KindRefresh,
		UserID: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.RefreshTokenExpiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify fails with bizerror.ErrTokenInvalid for malformed, tampered and
// expired tokens alike.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, bizerror.ErrTokenInvalid
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(c.config.Issuer))
	if err != nil {
		return nil, bizerror.ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, bizerror.ErrTokenInvalid
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, bizerror.ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return nil, bizerror.ErrTokenInvalid
	}
	return claims, nil
}
