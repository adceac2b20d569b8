package controller

import (
	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/pkg/serverutils"
	"query-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDatasetController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type datasetController struct {
	service service.IDatasetService
}

func NewDatasetController(service service.IDatasetService) IDatasetController {
	return &datasetController{service: service}
}

func (c *datasetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dataset/v1")
	h.Get("", c.GetAll)
	h.Post("", c.Register)
	h.Get(":ref", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *datasetController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all datasets", res))
}

func (c *datasetController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterDatasetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success register dataset", res))
}

// Show accepts either a dataset id or a dataset name.
func (c *datasetController) Show(ctx *fiber.Ctx) error {
	ref := ctx.Params("ref")
	if ref == "" {
		return apperror.Validation("missing dataset reference")
	}

	res, err := c.service.Lookup(ctx.Context(), ref)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show dataset", res))
}

func (c *datasetController) Update(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDatasetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Id = id

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update dataset", res))
}

func (c *datasetController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete dataset", nil))
}
