package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/pkg/serverutils"
	"condo-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	GetPages(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
	h.Post("", c.Register)
	h.Get("", c.GetAll)
	h.Get(":id/pages", c.GetPages)
	h.Post(":id/process", c.Reprocess)
	h.Delete(":id", c.Delete)
}

// Upload accepts a multipart PDF, stores it locally and registers it
// for analysis. Registration queues the ingestion run.
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "PDF file is required"))
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Only PDF files are supported"))
	}

	apartmentId, err := uuid.Parse(ctx.FormValue("apartment_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "apartment_id is required"))
	}

	if err := os.MkdirAll(filepath.Join(".", "uploads"), 0o755); err != nil {
		return err
	}
	localPath := filepath.Join(".", "uploads", fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(file.Filename)))
	if err := ctx.SaveFile(file, localPath); err != nil {
		return err
	}

	res, err := c.documentService.Register(ctx.Context(), userId, &dto.RegisterDocumentRequest{
		ApartmentId: apartmentId,
		FileName:    file.Filename,
		FilePath:    localPath,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

// Register records a document whose file already sits in cloud storage.
func (c *documentController) Register(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.RegisterDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Register(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success register document", res))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	apartmentId, err := uuid.Parse(ctx.Query("apartmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "apartmentId query is required")
	}

	res, err := c.documentService.GetAll(ctx.Context(), userId, apartmentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *documentController) GetPages(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.documentService.GetPages(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document pages", res))
}

// Reprocess re-queues a document. With reuse=true the stored analysis
// output is re-parsed instead of running new batch jobs.
func (c *documentController) Reprocess(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	var req dto.ProcessDocumentRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return err
	}
	req.Id = id

	if err := c.documentService.Reprocess(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success queue document processing", nil))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}
