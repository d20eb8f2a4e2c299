package controller

import (
	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/pkg/serverutils"
	"chatdoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIndexerController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Batches(ctx *fiber.Ctx) error
}

type indexerController struct {
	service   service.IIndexerService
	jwtSecret string
}

func NewIndexerController(service service.IIndexerService, jwtSecret string) IIndexerController {
	return &indexerController{service: service, jwtSecret: jwtSecret}
}

func (c *indexerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/indexer")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("/index", c.Index)
	h.Get("/batches", c.Batches)
}

func (c *indexerController) Index(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.IndexRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Index(ctx.UserContext(), userId, uuid.MustParse(req.DocumentId))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document indexed", res))
}

func (c *indexerController) Batches(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}

	documentId, err := documentIdFromQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListBatches(ctx.UserContext(), userId, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get batches", res))
}

func documentIdFromQuery(ctx *fiber.Ctx) (uuid.UUID, error) {
	var q dto.DocumentQuery
	if err := ctx.QueryParser(&q); err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(q.DocumentId), nil
}
