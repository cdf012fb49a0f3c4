package controller

import (
	"fmt"

	"brdgenius-be/internal/dto"
	"brdgenius-be/internal/pkg/serverutils"
	"brdgenius-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWizardController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	DefaultTemplate(ctx *fiber.Ctx) error
	SubmitProblem(ctx *fiber.Ctx) error
	SelectSolution(ctx *fiber.Ctx) error
	SubmitTechStack(ctx *fiber.Ctx) error
	SubmitTemplate(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	EditContent(ctx *fiber.Ctx) error
	GoBack(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
}

type wizardController struct {
	service  service.IWizardService
	sessions *serverutils.SessionManager
}

func NewWizardController(service service.IWizardService, sessions *serverutils.SessionManager) IWizardController {
	return &wizardController{service: service, sessions: sessions}
}

func (c *wizardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wizard/v1")
	h.Use(c.sessions.Middleware())
	h.Get("", c.Get)
	h.Get("template/default", c.DefaultTemplate)
	h.Post("problem", c.SubmitProblem)
	h.Post("solution", c.SelectSolution)
	h.Post("tech-stack", c.SubmitTechStack)
	h.Post("template", c.SubmitTemplate)
	h.Post("generate", c.Generate)
	h.Put("content", c.EditContent)
	h.Post("back", c.GoBack)
	h.Post("restart", c.Restart)
	h.Get("export/:format", c.Export)
}

func (c *wizardController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get wizard", res))
}

func (c *wizardController) DefaultTemplate(ctx *fiber.Ctx) error {
	res := dto.DefaultTemplateResponse{Template: c.service.DefaultTemplate()}
	return ctx.JSON(serverutils.SuccessResponse("Success get default template", res))
}

func (c *wizardController) SubmitProblem(ctx *fiber.Ctx) error {
	var req dto.SubmitProblemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitProblem(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit problem statement", res))
}

func (c *wizardController) SelectSolution(ctx *fiber.Ctx) error {
	var req dto.SelectSolutionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SelectSolution(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select solution", res))
}

func (c *wizardController) SubmitTechStack(ctx *fiber.Ctx) error {
	var req dto.SubmitTechStackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitTechStack(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit tech stack", res))
}

func (c *wizardController) SubmitTemplate(ctx *fiber.Ctx) error {
	var req dto.SubmitTemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitTemplate(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit template", res))
}

func (c *wizardController) Generate(ctx *fiber.Ctx) error {
	res, err := c.service.Generate(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate document", res))
}

func (c *wizardController) EditContent(ctx *fiber.Ctx) error {
	var req dto.EditContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.EditContent(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update content", res))
}

func (c *wizardController) GoBack(ctx *fiber.Ctx) error {
	res, err := c.service.GoBack(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success go back", res))
}

func (c *wizardController) Restart(ctx *fiber.Ctx) error {
	res, err := c.service.Restart(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restart wizard", res))
}

func (c *wizardController) Export(ctx *fiber.Ctx) error {
	file, err := c.service.Export(ctx.Context(), serverutils.SessionID(ctx), ctx.Params("format"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	return ctx.Send(file.Data)
}
