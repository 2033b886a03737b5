package middleware

import (
	"crypto/subtle"
	"fmt"

	"pos/internal/applog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

// AdminRealm is sent in the WWW-Authenticate challenge.
const AdminRealm = "Checkout System Admin"

// AdminAuth is a Fiber middleware requiring the static admin credential pair
// over HTTP basic auth. Only a bcrypt hash of the password is kept in memory.
func AdminAuth(username, password string) (fiber.Handler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return basicauth.New(basicauth.Config{
		Realm: AdminRealm,
		Authorizer: func(user, pass string) bool {
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
			return userOK && passOK
		},
		Unauthorized: func(c *fiber.Ctx) error {
			applog.Security(c, "admin.auth.denied", nil)
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+AdminRealm+`"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		},
	}), nil
}
