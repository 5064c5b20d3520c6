package server

import (
	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
	"github.com/openpress/backend/user"
)

// UserController serves account CRUD.
type UserController struct {
	Logger  auth.Logger
	Service *user.Service
}

func NewUserController(service *user.Service, logger auth.Logger) *UserController {
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	return &UserController{
		Logger:  logger,
		Service: service,
	}
}

func (u *UserController) Create(ctx router.Context) error {
	payload := new(user.CreateInput)

	if err := ctx.Bind(payload); err != nil {
		u.Logger.Error("user create parse payload", "error", err)
		return badRequest(ctx, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return renderError(ctx, err)
	}

	record, err := u.Service.Create(ctx.Context(), *payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, record.Public())
}

func (u *UserController) Show(ctx router.Context) error {
	record, err := u.Service.Find(ctx.Context(), ctx.Param("id", ""))
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record.Public())
}

func (u *UserController) List(ctx router.Context) error {
	records, err := u.Service.List(ctx.Context())
	if err != nil {
		return renderError(ctx, err)
	}

	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, record.Public())
	}

	return ctx.JSON(router.StatusOK, out)
}

func (u *UserController) Update(ctx router.Context) error {
	payload := new(user.UpdateInput)

	if err := ctx.Bind(payload); err != nil {
		u.Logger.Error("user update parse payload", "error", err)
		return badRequest(ctx, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return renderError(ctx, err)
	}

	record, err := u.Service.Update(ctx.Context(), ctx.Param("id", ""), *payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record.Public())
}

func (u *UserController) Delete(ctx router.Context) error {
	if err := u.Service.Delete(ctx.Context(), ctx.Param("id", "")); err != nil {
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]bool{"deleted": true})
}
