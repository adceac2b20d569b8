package controller

import (
	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/pkg/serverutils"
	"query-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICellController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateQuery(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Run(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type cellController struct {
	service   service.ICellService
	execution service.IExecutionService
}

func NewCellController(service service.ICellService, execution service.IExecutionService) ICellController {
	return &cellController{
		service:   service,
		execution: execution,
	}
}

func (c *cellController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cell/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.UpdateQuery)
	h.Put(":id/move", c.Move)
	h.Delete(":id", c.Delete)
	h.Post(":id/run", c.Run)
	h.Post(":id/cancel", c.Cancel)
}

func (c *cellController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create cell", res))
}

func (c *cellController) Show(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show cell", res))
}

func (c *cellController) UpdateQuery(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateCellQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateQuery(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update cell query", res))
}

func (c *cellController) Move(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.MoveCellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Move(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success move cell", res))
}

func (c *cellController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete cell", nil))
}

func (c *cellController) Run(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.execution.Run(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Run accepted", res))
}

func (c *cellController) Cancel(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.execution.Cancel(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cancellation signalled", res))
}
