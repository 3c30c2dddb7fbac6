package controller

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/canopy-network/flightsurety/pkg/types"
)

const (
	sessionCookie = "fs_session"
	sessionTTL    = 8 * time.Hour
)

type callerKey struct{}

// SessionClaims identify the account acting through a session. Relayed marks
// sessions opened by a proxy on someone's behalf.
type SessionClaims struct {
	Relayed bool `json:"relayed,omitempty"`
	jwt.RegisteredClaims
}

func bearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// ValidateToken checks if the Authorization header carries the AdminToken
func (c *Controller) ValidateToken(r *http.Request) bool {
	token := bearer(r)
	return token != "" && token == c.AdminToken
}

// SignSession returns a signed session token for account.
func (c *Controller) SignSession(account types.Address, relayed bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Relayed: relayed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	})
	return token.SignedString(c.JWTSecret)
}

// ParseSession validates a session token and returns the account it names.
func (c *Controller) ParseSession(raw string) (types.Address, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return types.ZeroAddress, err
	}
	if !tok.Valid {
		return types.ZeroAddress, errors.New("invalid session")
	}
	return types.ParseAddress(claims.Subject)
}

// Caller resolves the account behind a request from the bearer token or the
// session cookie.
func (c *Controller) Caller(r *http.Request) (types.Address, bool) {
	if raw := bearer(r); raw != "" && raw != c.AdminToken {
		if a, err := c.ParseSession(raw); err == nil {
			return a, true
		}
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if a, err := c.ParseSession(cookie.Value); err == nil {
			return a, true
		}
	}
	return types.ZeroAddress, false
}

// RequireCaller middleware
func (c *Controller) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := c.Caller(r)
		if !ok {
			c.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}

// RequireAdmin middleware
func (c *Controller) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.ValidateToken(r) {
			next.ServeHTTP(w, r)
			return
		}
		c.writeError(w, http.StatusUnauthorized, "unauthorized")
	})
}

func callerFrom(ctx context.Context) types.Address {
	a, _ := ctx.Value(callerKey{}).(types.Address)
	return a
}

// HandleLogin opens an owner session for the admin user.
func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		c.writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Username != c.AdminUser {
		c.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword(c.AuthHash, []byte(in.Password)); err != nil {
		c.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := c.SignSession(c.Owner, false)
	if err != nil {
		c.App.Logger.Error("Failed to sign session", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "unable to issue session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("ENVIRONMENT") == "production",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	c.writeJSON(w, http.StatusOK, map[string]string{"address": c.Owner.Hex(), "token": token})
}

// HandleLogout clears the session cookie.
func (c *Controller) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleIssueToken issues a session token for any account. Signing services
// use it to act for the accounts whose keys they hold. Relayed sessions mark
// the account as a relay so it can never be admitted as an airline.
func (c *Controller) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Address string `json:"address"`
		Relayed bool   `json:"relayed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		c.writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	account, err := types.ParseAddress(in.Address)
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if account.IsZero() {
		c.writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if in.Relayed {
		c.App.Directory.MarkRelay(account)
	}
	token, err := c.SignSession(account, in.Relayed)
	if err != nil {
		c.App.Logger.Error("Failed to sign session", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "unable to issue session")
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]string{"address": account.Hex(), "token": token})
}
