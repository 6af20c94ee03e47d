package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesquest-be/internal/dto"
	"notesquest-be/internal/pkg/serverutils"
	"notesquest-be/internal/service"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	GenerateSummary(ctx *fiber.Ctx) error
	GenerateQuiz(ctx *fiber.Ctx) error
	GenerateFlashcards(ctx *fiber.Ctx) error
	LatestSummary(ctx *fiber.Ctx) error
	LatestQuiz(ctx *fiber.Ctx) error
	LatestFlashcards(ctx *fiber.Ctx) error
	GradeQuiz(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
}

func NewGenerationController(generationService service.IGenerationService) IGenerationController {
	return &generationController{
		generationService: generationService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai/v1")
	h.Post("summary", c.GenerateSummary)
	h.Post("quiz", c.GenerateQuiz)
	h.Post("flashcards", c.GenerateFlashcards)
	h.Get("summary/:documentId", c.LatestSummary)
	h.Get("quiz/:documentId", c.LatestQuiz)
	h.Get("flashcards/:documentId", c.LatestFlashcards)
	h.Post("quiz/:documentId/grade", c.GradeQuiz)
}

func (c *generationController) GenerateSummary(ctx *fiber.Ctx) error {
	var req dto.GenerateSummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateSummary(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate summary", res))
}

func (c *generationController) GenerateQuiz(ctx *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateQuiz(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate quiz", res))
}

func (c *generationController) GenerateFlashcards(ctx *fiber.Ctx) error {
	var req dto.GenerateFlashcardsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateFlashcards(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate flashcards", res))
}

func (c *generationController) LatestSummary(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.generationService.LatestSummary(ctx.Context(), serverutils.OwnerId(ctx), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get latest summary", res))
}

func (c *generationController) LatestQuiz(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.generationService.LatestQuiz(ctx.Context(), serverutils.OwnerId(ctx), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get latest quiz", res))
}

func (c *generationController) LatestFlashcards(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.generationService.LatestFlashcards(ctx.Context(), serverutils.OwnerId(ctx), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get latest flashcards", res))
}

func (c *generationController) GradeQuiz(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var req dto.GradeQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GradeQuiz(ctx.Context(), serverutils.OwnerId(ctx), documentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success grade quiz", res))
}
