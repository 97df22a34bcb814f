package controller

import (
	"ragify-be/internal/dto"
	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	SetDocuments(ctx *fiber.Ctx) error
	Transcript(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
	auth    fiber.Handler
}

func NewConversationController(service service.IConversationService, auth fiber.Handler) IConversationController {
	return &conversationController{service: service, auth: auth}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Post("", c.Create)
	h.Get(":id/messages", c.Messages)
	h.Post(":id/messages", c.SendMessage)
	h.Get(":id/state", c.State)
	h.Put(":id/documents", c.SetDocuments)
	h.Get(":id/transcript", c.Transcript)
	h.Delete(":id", c.Delete)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *conversationController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *conversationController) Messages(ctx *fiber.Ctx) error {
	res, err := c.service.Messages(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *conversationController) State(ctx *fiber.Ctx) error {
	res, err := c.service.State(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation state", res))
}

func (c *conversationController) SetDocuments(ctx *fiber.Ctx) error {
	var req dto.SetDocumentsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetDocuments(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set documents", res))
}

func (c *conversationController) Transcript(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)
	if limit <= 0 || limit > 500 || offset < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be 1..500 and offset non-negative")
	}

	res, err := c.service.Transcript(ctx.UserContext(), ctx.Params("id"), limit, offset)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get transcript", res))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}
