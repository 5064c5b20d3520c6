package server

import (
	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
	"github.com/openpress/backend/template"
)

// TemplateController serves template CRUD.
type TemplateController struct {
	Logger  auth.Logger
	Service *template.Service
}

func NewTemplateController(service *template.Service, logger auth.Logger) *TemplateController {
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	return &TemplateController{
		Logger:  logger,
		Service: service,
	}
}

func (t *TemplateController) Create(ctx router.Context) error {
	payload := new(template.CreateInput)

	if err := ctx.Bind(payload); err != nil {
		t.Logger.Error("template create parse payload", "error", err)
		return badRequest(ctx, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return renderError(ctx, err)
	}

	record, err := t.Service.Create(ctx.Context(), *payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, record)
}

func (t *TemplateController) Show(ctx router.Context) error {
	record, err := t.Service.Find(ctx.Context(), ctx.Param("id", ""))
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (t *TemplateController) List(ctx router.Context) error {
	records, err := t.Service.List(ctx.Context())
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, records)
}

func (t *TemplateController) Update(ctx router.Context) error {
	payload := new(template.UpdateInput)

	if err := ctx.Bind(payload); err != nil {
		t.Logger.Error("template update parse payload", "error", err)
		return badRequest(ctx, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return renderError(ctx, err)
	}

	record, err := t.Service.Update(ctx.Context(), ctx.Param("id", ""), *payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (t *TemplateController) Delete(ctx router.Context) error {
	if err := t.Service.Delete(ctx.Context(), ctx.Param("id", "")); err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]bool{"deleted": true})
}
