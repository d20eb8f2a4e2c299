package controller

import (
	"fmt"
	"mime/multipart"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/pkg/serverutils"
	"chatdoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service      service.IDocumentService
	jwtSecret    string
	maxFileBytes int64
}

// NewDocumentController rejects any single file above maxFileBytes; zero
// disables the check.
func NewDocumentController(service service.IDocumentService, jwtSecret string, maxFileBytes int64) IDocumentController {
	return &documentController{service: service, jwtSecret: jwtSecret, maxFileBytes: maxFileBytes}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form with files")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}
	if len(headers) > service.MaxFilesPerUpload {
		return fiber.NewError(fiber.StatusBadRequest, "Too many files")
	}
	for _, fh := range headers {
		if c.maxFileBytes > 0 && fh.Size > c.maxFileBytes {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: %s", fh.Filename))
		}
	}

	files := make([]dto.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		opened = append(opened, f)
		files = append(files, dto.UploadFile{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Content:      f,
		})
	}

	res, err := c.service.Upload(ctx.UserContext(), userId, files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Files uploaded", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.service.Delete(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document deleted", res))
}
