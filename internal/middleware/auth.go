package middleware

import (
	"github.com/gofiber/fiber/v3"

	"serpwatch/internal/db"
	"serpwatch/internal/models"
)

// APIKeyHeader carries the caller's project API key.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware resolves the tenant project for incoming API requests.
type AuthMiddleware struct {
	db *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{db: database}
}

// RequireProject resolves the project from the API key header and stores it
// in request locals. Missing or unknown keys get a 401; the error body never
// reveals whether the key matched a real project.
func (m *AuthMiddleware) RequireProject(c fiber.Ctx) error {
	apiKey := c.Get(APIKeyHeader)
	if apiKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "missing API key",
		})
	}

	project, err := m.db.GetProjectByAPIKey(c.Context(), apiKey)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "invalid API key",
		})
	}

	c.Locals("project", project)
	return c.Next()
}

// ProjectFromCtx returns the resolved tenant project, or nil when the
// middleware did not run.
func ProjectFromCtx(c fiber.Ctx) *models.Project {
	project, _ := c.Locals("project").(*models.Project)
	return project
}
