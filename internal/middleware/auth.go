// Package middleware provides HTTP middleware shared by every route group.
package middleware

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"capstone/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Role identifies which kind of account a token was issued to. The subject
// claim is a student id for RoleStudent and a supervisor id for RoleSupervisor.
type Role string

const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// Locals keys set by AuthRequired.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Claims is the token payload accepted by AuthRequired.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the given account.
func IssueToken(secret string, id uint, role Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", errors.New("unknown role")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
		"code":  "UNAUTHORIZED",
	})
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return unauthorized(c, "Invalid or expired token")
	}

	if claims.Subject == "" {
		return unauthorized(c, "Invalid token structure - missing subject")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return unauthorized(c, "Invalid subject in token")
	}

	// Tokens minted before roles existed were student tokens.
	role := claims.Role
	if role == "" {
		role = RoleStudent
	}
	if !role.Valid() {
		return unauthorized(c, "Invalid role in token")
	}

	c.Locals(LocalUserID, uint(id))
	c.Locals(LocalRole, role)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, uint(id))
	ctx = context.WithValue(ctx, RoleKey, role)
	c.SetUserContext(ctx)

	return c.Next()
}

// RequireRole rejects callers whose token role is not one of roles. It must
// run after AuthRequired.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(Role)
		if !slices.Contains(roles, role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient role for this action",
				"code":  "UNAUTHORIZED",
			})
		}
		return c.Next()
	}
}
