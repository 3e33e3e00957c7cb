package users

import (
	"github.com/Rohitm121508/Thread-App/internal/apperr"
	"github.com/Rohitm121508/Thread-App/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, session *auth.Service, authMiddleware fiber.Handler) {
	r.Post("/signup", func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		user, err := svc.Signup(c.Context(), req)
		if err != nil {
			return err
		}
		if err := session.IssueCookie(c, user.ID); err != nil {
			return err
		}
		return c.JSON(user)
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return apperr.Validation("username and password required")
		}
		user, err := svc.Login(c.Context(), req)
		if err != nil {
			return err
		}
		if err := session.IssueCookie(c, user.ID); err != nil {
			return err
		}
		return c.JSON(user)
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		auth.ClearCookie(c)
		return c.JSON(fiber.Map{"message": "User logged out successfully"})
	})

	r.Post("/follow/:id", authMiddleware, func(c *fiber.Ctx) error {
		msg, err := svc.FollowUnfollow(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})

	r.Put("/update/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		user, err := svc.Update(c.Context(), auth.UserID(c), c.Params("id"), req)
		if err != nil {
			return err
		}
		return c.JSON(user)
	})

	r.Get("/profile/:query", func(c *fiber.Ctx) error {
		user, err := svc.GetProfile(c.Context(), c.Params("query"))
		if err != nil {
			return err
		}
		return c.JSON(user)
	})
}
