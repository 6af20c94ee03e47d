package controller

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesquest-be/internal/dto"
	"notesquest-be/internal/pkg/serverutils"
	"notesquest-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	ProcessText(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	maxUploadBytes  int64
}

func NewDocumentController(documentService service.IDocumentService, maxUploadBytes int64) IDocumentController {
	return &documentController{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("upload", c.Upload)
	h.Post("text", c.ProcessText)
	h.Get("history", c.History)
	h.Get(":id", c.Show)
	h.Post(":id/reprocess", c.Reprocess)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > c.maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", c.maxUploadBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	req := dto.UploadDocumentRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	res, err := c.documentService.Upload(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) ProcessText(ctx *fiber.Ctx) error {
	var req dto.ProcessTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.ProcessText(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success process text", res))
}

func (c *documentController) Reprocess(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Reprocess(ctx.Context(), serverutils.OwnerId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reprocess document", res))
}

func (c *documentController) History(ctx *fiber.Ctx) error {
	res, err := c.documentService.History(ctx.Context(), serverutils.OwnerId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document history", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), serverutils.OwnerId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), serverutils.OwnerId(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", struct{}{}))
}
