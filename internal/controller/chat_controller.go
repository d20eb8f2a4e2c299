package controller

import (
	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/pkg/serverutils"
	"chatdoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	jwtSecret string
}

func NewChatController(service service.IChatService, jwtSecret string) IChatController {
	return &chatController{service: service, jwtSecret: jwtSecret}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("/query", c.Query)
	h.Get("/history", c.History)
	h.Delete("/history", c.ClearHistory)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}
	documentId, err := documentIdFromQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.History(ctx.UserContext(), userId, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}
	documentId, err := documentIdFromQuery(ctx)
	if err != nil {
		return err
	}

	if err := c.service.ClearHistory(ctx.UserContext(), userId, documentId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("History cleared", nil))
}
