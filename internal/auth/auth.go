// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth implements account logon, account creation and API-key
// issuance, and the JWT tokens the rest of the gateway authenticates with.
package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/dbpool"
)

// Config configures JWT issuance.
type Config struct {
	Secret     string
	ExpiryHour int
}

// Claims is the JWT payload this gateway issues and verifies.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service issues tokens and manages the `auth_account` table.
type Service struct {
	cfg  Config
	pool *dbpool.Pool
}

// New returns a Service. cfg.Secret must be non-empty.
func New(cfg Config, pool *dbpool.Pool) (*Service, error) {
	if cfg.Secret == "" {
		return nil, apperr.ConfigError("jwt secret is required", nil)
	}
	if cfg.ExpiryHour <= 0 {
		cfg.ExpiryHour = 24
	}
	return &Service{cfg: cfg, pool: pool}, nil
}

// IssueToken mints a signed JWT for subject/role, expiring after
// cfg.ExpiryHour hours.
func (s *Service) IssueToken(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.ExpiryHour) * time.Hour)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperr.Unauthorized("signing token: %v", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a signed JWT, returning its claims.
func (s *Service) VerifyToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token: %v", err)
	}
	return claims, nil
}

// Logon verifies email/password against the stored bcrypt hash and issues a
// token on success.
func (s *Service) Logon(ctx context.Context, email, password string) (string, error) {
	row, err := s.pool.QueryOne(ctx,
		"select id, password_hash, role from auth_account where email = ?", email)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", apperr.Unauthorized("unknown account")
	}
	hash, _ := row["password_hash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", apperr.Unauthorized("wrong password")
	}
	role, _ := row["role"].(string)
	subject := toSubject(row["id"])
	return s.IssueToken(subject, role)
}

// CreateAccount hashes password and inserts a new auth_account row.
func (s *Service) CreateAccount(ctx context.Context, email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Unauthorized("hashing password: %v", err)
	}
	if role == "" {
		role = "user"
	}
	_, err = s.pool.Exec(ctx,
		"insert into auth_account (email, password_hash, role) values (?, ?, ?)",
		email, string(hash), role)
	return err
}

// IssueAPIKey generates a fresh UUID API key and stores it against the
// account identified by email.
func (s *Service) IssueAPIKey(ctx context.Context, email string) (string, error) {
	key := uuid.NewString()
	n, err := s.pool.Exec(ctx, "update auth_account set api_key = ? where email = ?", key, email)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", apperr.Unauthorized("unknown account")
	}
	return key, nil
}

func toSubject(id any) string {
	switch v := id.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return ""
	}
}
