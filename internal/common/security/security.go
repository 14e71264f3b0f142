/*******************************************************************************
* Copyright (C) 2026 the Eclipse BaSyx Authors and Fraunhofer IESE
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package auth turns bearer tokens into the principal the gateway evaluates
// access for, and guards the administrative API.
//
// Requests without an Authorization header run as the anonymous principal.
// A header that is present must carry a valid HS256 token; its roles claim
// becomes the role list of the principal.
package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/access"
	gatewayapi "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/pkg/gatewayapi"
)

// AdministerCapability is the global capability that opens the
// administrative API to non-admin roles.
const AdministerCapability = "administer gateway"

const clockSkew = 5 * time.Second

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator verifies bearer tokens.
type Authenticator struct {
	cfg    common.AuthConfig
	secret []byte
	parser *jwt.Parser
}

// NewAuthenticator builds an authenticator from the auth settings.
func NewAuthenticator(cfg common.AuthConfig) *Authenticator {
	if cfg.RolesClaim == "" {
		cfg.RolesClaim = "roles"
	}
	if cfg.AnonymousRole == "" {
		cfg.AnonymousRole = "anonymous"
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	log.Printf("🔐 Bearer authentication enabled=%t rolesClaim=%s", cfg.Enabled, cfg.RolesClaim)
	return &Authenticator{cfg: cfg, secret: []byte(cfg.JWTSecret), parser: jwt.NewParser(opts...)}
}

// Anonymous returns the principal of requests without credentials.
func (a *Authenticator) Anonymous() access.Principal {
	return access.AnonymousPrincipal(a.cfg.AnonymousRole)
}

// Authenticate verifies raw and returns the principal it describes.
func (a *Authenticator) Authenticate(raw string) (access.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(a.secret) == 0 {
		return access.Principal{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	token, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return access.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if sub, _ := claims.GetSubject(); strings.TrimSpace(sub) == "" {
		return access.Principal{}, fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}

	roleIDs := rolesFromClaim(claims[a.cfg.RolesClaim])
	if a.cfg.AuthenticatedRole != "" {
		roleIDs = append(roleIDs, common.NormalizeRoleID(a.cfg.AuthenticatedRole))
	}
	roleIDs = dedupeRoles(roleIDs)

	roles := make([]access.Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		roles = append(roles, access.Role{ID: id, Admin: a.isAdminRole(id)})
	}
	return access.NewPrincipal(roles...), nil
}

func (a *Authenticator) isAdminRole(id string) bool {
	return slices.ContainsFunc(a.cfg.AdminRoles, func(admin string) bool { return common.NormalizeRoleID(admin) == id })
}

// Middleware stores the request principal in the context. Invalid tokens are
// rejected with 401; with authentication disabled every request is anonymous.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !a.cfg.Enabled || authz == "" {
			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), a.Anonymous())))
			return
		}
		raw, ok := strings.CutPrefix(authz, "Bearer ")
		if !ok {
			deny(w, http.StatusUnauthorized, errors.New("invalid Authorization header"), "Header")
			return
		}
		p, err := a.Authenticate(raw)
		if err != nil {
			log.Printf("❌ Token verification failed: %v", err)
			deny(w, http.StatusUnauthorized, ErrInvalidToken, "Token")
			return
		}
		next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
	})
}

// RequireAdministrator lets admin principals and holders of
// AdministerCapability through.
func RequireAdministrator(perms access.PermissionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := access.PrincipalFromContext(r.Context())
			if p.IsAdmin() || perms.HasCapability(p, AdministerCapability) {
				next.ServeHTTP(w, r)
				return
			}
			log.Printf("⛔ Administrative request denied for roles %v", p.RoleIDs())
			deny(w, http.StatusForbidden, fmt.Errorf("the '%s' permission is required", AdministerCapability), "Rules")
		})
	}
}

func deny(w http.ResponseWriter, status int, err error, operation string) {
	resp := common.NewErrorResponse(err, status, "Middleware", operation, "Denied")
	_ = gatewayapi.EncodeJSONResponse(resp.Body, &resp.Code, w)
}

// GenerateToken signs an HS256 token for subject with the given roles. It is
// meant for tooling and tests; production tokens come from the identity
// provider.
func GenerateToken(secret []byte, issuer, subject string, roles []string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be greater than zero")
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"roles": dedupeRoles(roles),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// rolesFromClaim accepts a JSON array or a space separated string.
func rolesFromClaim(v any) []string {
	var roles []string
	switch t := v.(type) {
	case []any:
		for _, r := range t {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	case []string:
		roles = append(roles, t...)
	case string:
		roles = strings.Fields(t)
	}
	return roles
}

func dedupeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = common.NormalizeRoleID(role)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
