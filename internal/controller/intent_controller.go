package controller

import (
	"ragify-be/internal/dto"
	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIntentController interface {
	RegisterRoutes(r fiber.Router)
	Classify(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
	Extract(ctx *fiber.Ctx) error
}

type intentController struct {
	service service.IIntentService
}

func NewIntentController(service service.IIntentService) IIntentController {
	return &intentController{service: service}
}

func (c *intentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/intent/v1")
	h.Post("classify", c.Classify)
	h.Post("resolve", c.Resolve)
	h.Post("extract", c.Extract)
}

func (c *intentController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyIntentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify intent", c.service.Classify(ctx.UserContext(), &req)))
}

func (c *intentController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveClarificationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve clarification", c.service.Resolve(ctx.UserContext(), &req)))
}

func (c *intentController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractInstructionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success extract instruction", c.service.Extract(ctx.UserContext(), &req)))
}
