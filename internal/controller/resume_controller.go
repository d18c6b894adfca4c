package controller

import (
	"errors"
	"io"

	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/pkg/serverutils"
	"resume-optimizer/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResumeController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Result(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type resumeController struct {
	service service.IResumeService
	history service.IHistoryService
}

// NewResumeController wires the resume endpoints. history may be nil when
// no database is configured; the history route is then not registered.
func NewResumeController(service service.IResumeService, history service.IHistoryService) IResumeController {
	return &resumeController{service: service, history: history}
}

func (c *resumeController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
	r.Post("/resume_optimization", c.Submit)
	r.Post("/get_resume_optimization_result", c.Result)
	r.Post("/resume_optimization_chat", c.Chat)

	if c.history != nil {
		h := r.Group("/api")
		h.Get("/evaluations", c.History)
	}
}

func (c *resumeController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitEvaluationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form: "+err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	f, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}

	res, err := c.service.Submit(ctx.UserContext(), &req, header.Filename, data)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDocument) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *resumeController) Result(ctx *fiber.Ctx) error {
	var req dto.QueryResultRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form: "+err.Error())
	}

	res, err := c.service.Result(ctx.UserContext(), req.TaskId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *resumeController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form: "+err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *resumeController) History(ctx *fiber.Ctx) error {
	res, err := c.history.List(ctx.UserContext(), ctx.QueryInt("limit"), ctx.QueryInt("offset"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get evaluations", res))
}

func (c *resumeController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"service": "resume-optimizer"}))
}
