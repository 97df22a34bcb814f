package controller

import (
	"ragify-be/internal/dto"
	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	ClearSelection(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
}

type notebookController struct {
	service service.INotebookService
	auth    fiber.Handler
}

func NewNotebookController(service service.INotebookService, auth fiber.Handler) INotebookController {
	return &notebookController{service: service, auth: auth}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notebook/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Put(":id/selection", c.Select)
	h.Delete(":id/selection", c.ClearSelection)
	h.Post(":id/generate", c.Generate)
}

func (c *notebookController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notebook", res))
}

func (c *notebookController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateNotebookRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update notebook", res))
}

func (c *notebookController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Clear(ctx.UserContext(), ctx.Params("id")); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear notebook", nil))
}

func (c *notebookController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Select(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select text", res))
}

func (c *notebookController) ClearSelection(ctx *fiber.Ctx) error {
	res, err := c.service.ClearSelection(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear selection", res))
}

func (c *notebookController) Generate(ctx *fiber.Ctx) error {
	res, err := c.service.Generate(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate notebook", res))
}
