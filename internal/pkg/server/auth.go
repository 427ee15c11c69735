package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/pkg/hasher"
)

const (
	DefaultTokenTTL = 12 * time.Hour
	tokenSubject    = "api"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	errAuthDisabled = errors.New("authentication is not configured")
)

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *server) authEnabled() bool {
	return s.cfg.Secret != ""
}

func (s *server) issueToken(now time.Time) (string, time.Time, error) {
	expires := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

func (s *server) parseToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(tokenSubject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.authEnabled() || s.cfg.PasswordHash == "" {
		writeError(w, http.StatusNotFound, errAuthDisabled)
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if !hasher.PasswordCorrect(req.Password, s.cfg.PasswordHash) {
		s.logger.Warn("rejected token request", zap.String("request_id", requestID(r)))
		writeError(w, http.StatusUnauthorized, errors.New("invalid password"))
		return
	}
	token, expires, err := s.issueToken(s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires})
}

// authMiddleware accepts a bearer token, or a token query parameter for
// websocket clients that cannot set headers. It is a no-op when no secret
// is configured.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled() {
			next.ServeHTTP(w, r)
			return
		}
		raw := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); header != "" {
			var ok bool
			raw, ok = strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrTokenInvalid)
				return
			}
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing token"))
			return
		}
		if err := s.parseToken(raw); err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
