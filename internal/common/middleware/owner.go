package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	ownerKey       = "owner"
	userKey        = "userID"
	AnonymousOwner = "anonymous"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	Resolve(token string) (string, bool)
}

// Owner picks the namespace state is stored under: the signed-in user,
// else the X-Client-ID header, else the shared anonymous namespace.
func Owner(sessions TokenResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		owner := AnonymousOwner
		if token, ok := BearerToken(c); ok {
			if userID, ok := sessions.Resolve(token); ok {
				owner = "user:" + userID
				c.Locals(userKey, userID)
			}
		}
		if owner == AnonymousOwner {
			if id := strings.TrimSpace(c.Get("X-Client-ID")); id != "" {
				owner = "client:" + id
			}
		}
		c.Locals(ownerKey, owner)
		return c.Next()
	}
}

// OwnerID returns the namespace set by Owner.
func OwnerID(c fiber.Ctx) string {
	if v, ok := c.Locals(ownerKey).(string); ok && v != "" {
		return v
	}
	return AnonymousOwner
}

// UserID returns the signed-in user, if any.
func UserID(c fiber.Ctx) (string, bool) {
	v, ok := c.Locals(userKey).(string)
	return v, ok && v != ""
}

func BearerToken(c fiber.Ctx) (string, bool) {
	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return token, token != ""
}
