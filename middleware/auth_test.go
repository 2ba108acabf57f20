package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testApp(roles ...models.Role) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{Protected(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		id, _ := CallerID(c)
		role, _ := CallerRole(c)
		return c.JSON(fiber.Map{"id": id, "role": role})
	})
	app.Get("/secure", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestProtectedValidToken(t *testing.T) {
	app := testApp()
	token := signToken(t, jwt.MapClaims{
		"id":   "user-1",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	resp := doRequest(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedMissingToken(t *testing.T) {
	resp := doRequest(t, testApp(), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedExpiredToken(t *testing.T) {
	app := testApp()
	token := signToken(t, jwt.MapClaims{
		"id":   "user-1",
		"role": "user",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	resp := doRequest(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedUnknownRoleRejected(t *testing.T) {
	app := testApp()
	token := signToken(t, jwt.MapClaims{
		"id":   "user-1",
		"role": "superuser",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	resp := doRequest(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleAllowSet(t *testing.T) {
	app := testApp(models.RoleAdmin)

	admin := signToken(t, jwt.MapClaims{
		"id":   "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	resp := doRequest(t, app, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	customer := signToken(t, jwt.MapClaims{
		"id":   "user-1",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	resp = doRequest(t, app, customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleMultipleRoles(t *testing.T) {
	app := testApp(models.RoleProvider, models.RoleAdmin)

	provider := signToken(t, jwt.MapClaims{
		"id":   "prov-1",
		"role": "provider",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	resp := doRequest(t, app, provider)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
