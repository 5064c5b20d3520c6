package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
)

// ErrorResponse is the uniform error body. FieldErrors is only present
// for validation failures; FormErrors carries payload-level problems.
type ErrorResponse struct {
	Message     string            `json:"message"`
	FormErrors  []string          `json:"form_errors,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// renderError maps a categorized error to an HTTP response. Anything
// uncategorized is treated as internal so unexpected failures never
// leak details.
func renderError(ctx router.Context, err error) error {
	if verrs, ok := err.(validation.Errors); ok {
		return ctx.JSON(router.StatusBadRequest, ErrorResponse{
			Message:     "validation failed",
			FieldErrors: formatValidationErrors(verrs),
		})
	}

	if auth.IsUnauthenticated(err) {
		return unauthorized(ctx)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth:
			return unauthorized(ctx)
		case goerrors.CategoryAuthz:
			return ctx.JSON(router.StatusForbidden, ErrorResponse{Message: "Forbidden"})
		case goerrors.CategoryNotFound:
			return ctx.JSON(router.StatusNotFound, ErrorResponse{Message: richErr.Message})
		case goerrors.CategoryConflict:
			return ctx.JSON(router.StatusConflict, ErrorResponse{Message: richErr.Message})
		case goerrors.CategoryBadInput, goerrors.CategoryValidation:
			return ctx.JSON(router.StatusBadRequest, ErrorResponse{Message: richErr.Message})
		}
	}

	return ctx.JSON(router.StatusInternalServerError, ErrorResponse{
		Message: "Internal Server Error",
	})
}

// unauthorized is the single rejection shape for every authentication
// failure; the body never says why.
func unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, ErrorResponse{
		Message: "Unauthorized",
	})
}

func badRequest(ctx router.Context, msg string) error {
	return ctx.JSON(router.StatusBadRequest, ErrorResponse{
		Message:    "invalid request body",
		FormErrors: []string{msg},
	})
}

func formatValidationErrors(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}
