package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"CoHub/Models"
)

// Memberships looks up a caller's membership in a project.
type Memberships interface {
	Membership(ctx context.Context, projectID, userID uint) (*Models.Project, Models.ProjectMember, error)
}

// RequireProjectMember lets the request through only when the caller is a
// member of the project named by the :projectId parameter. It stores the
// project in c.Locals("project") and the membership in c.Locals("member").
// Must run after Verify.
func RequireProjectMember(memberships Memberships) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Login required"})
		}
		projectID, err := c.ParamsInt("projectId")
		if err != nil || projectID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project id"})
		}

		project, member, err := memberships.Membership(c.UserContext(), uint(projectID), user.ID)
		switch {
		case errors.Is(err, Models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		case errors.Is(err, Models.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this project"})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check project access"})
		}

		c.Locals("project", project)
		c.Locals("member", member)
		return c.Next()
	}
}

// RequireProjectAdmin must run after RequireProjectMember.
func RequireProjectAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		member, ok := c.Locals("member").(Models.ProjectMember)
		if !ok || member.Role != Models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Project admin rights required"})
		}
		return c.Next()
	}
}
