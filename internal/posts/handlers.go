package posts

import (
	"github.com/Rohitm121508/Thread-App/internal/apperr"
	"github.com/Rohitm121508/Thread-App/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/create", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		post, err := svc.Create(c.Context(), auth.UserID(c), req)
		if err != nil {
			return err
		}
		return c.JSON(post)
	})

	r.Get("/user/:username", func(c *fiber.Ctx) error {
		feed, err := svc.GetUserPosts(c.Context(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(feed)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(post)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.UserID(c), c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Post deleted successfully"})
	})

	r.Post("/reply/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req ReplyRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		reply, err := svc.Reply(c.Context(), auth.UserID(c), c.Params("id"), req.Text)
		if err != nil {
			return err
		}
		return c.JSON(reply)
	})

	r.Post("/like/:id", authMiddleware, func(c *fiber.Ctx) error {
		msg, err := svc.LikeUnlike(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})
}
