package jwtx

import (
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"strconv"
	"time"
)

type Config struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	SigningKey string `json:"signingKey" yaml:"signing-key" mapstructure:"signing-key"`
	// 过期时间，分钟
	AccessExpired int64 `json:"accessExpired" yaml:"access-expired" mapstructure:"access-expired"`
}

func (cfg *Config) Prepare() {
	if cfg.AccessExpired == 0 {
		cfg.AccessExpired = 12 * 60
	}
}

type Jwt struct {
	SigningKey    string
	AccessExpired int64
}

// NewJwtService 创建jwt服务
func NewJwtService(cfg Config) *Jwt {
	cfg.Prepare()
	return &Jwt{
		SigningKey:    cfg.SigningKey,
		AccessExpired: cfg.AccessExpired,
	}
}

type TokenDetails struct {
	AccessToken string `json:"access_token"`
	AccessUuid  string `json:"access_uuid"`
	AtExpires   int64  `json:"at_expires"`
}

// CreateToken 创建token
func (j *Jwt) CreateToken(userID int64) (*TokenDetails, error) {
	td := &TokenDetails{}
	td.AtExpires = time.Now().Add(time.Minute * time.Duration(j.AccessExpired)).Unix()
	td.AccessUuid = uuid.NewString()

	atClaims := jwt.MapClaims{}
	atClaims["authorized"] = true
	atClaims["access_uuid"] = td.AccessUuid
	atClaims["user_identity"] = strconv.FormatInt(userID, 10)
	atClaims["exp"] = td.AtExpires
	at := jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims)
	var err error
	td.AccessToken, err = at.SignedString([]byte(j.SigningKey))
	if err != nil {
		return nil, err
	}
	return td, nil
}

// VerifyToken 验证token
func (j *Jwt) VerifyToken(tokenString string) (*jwt.Token, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("bearer token not found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected jwt signing method: %v", token.Header["alg"])
		}
		return []byte(j.SigningKey), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// ExtractUserID 从token中提取用户id
func (j *Jwt) ExtractUserID(tokenString string) (int64, error) {
	token, err := j.VerifyToken(tokenString)
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid jwt claims")
	}
	identity, ok := claims["user_identity"].(string)
	if !ok {
		return 0, fmt.Errorf("jwt claims missing user_identity")
	}
	return strconv.ParseInt(identity, 10, 64)
}
