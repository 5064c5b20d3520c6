package server_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/backend/server"
	"github.com/openpress/backend/template"
	"github.com/openpress/backend/user"
)

// Exercise the error mapping through a controller rather than poking
// the unexported helper: a conflict from the service must surface as a
// 409, a missing record as a 404.
func TestControllerErrorMapping(t *testing.T) {
	t.Run("conflict maps to 409", func(t *testing.T) {
		store := newTemplateStore()
		ctrl := server.NewTemplateController(template.NewService(store), nil)

		create := func() (int, any) {
			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			bindPayload(ctx, template.CreateInput{Name: "welcome", HTML: "<p>hi</p>"})

			var status int
			var body any
			captureJSON(ctx, &status, &body)
			require.NoError(t, ctrl.Create(ctx))
			return status, body
		}

		status, _ := create()
		assert.Equal(t, router.StatusCreated, status)

		status, body := create()
		assert.Equal(t, router.StatusConflict, status)

		resp, ok := body.(server.ErrorResponse)
		require.True(t, ok)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("missing record maps to 404", func(t *testing.T) {
		ctrl := server.NewUserController(user.NewService(newUserStore()), nil)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.ParamsM["id"] = "no-such-id"

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Show(ctx))
		assert.Equal(t, router.StatusNotFound, status)
	})

	t.Run("validation failure maps to 400 with field errors", func(t *testing.T) {
		ctrl := server.NewUserController(user.NewService(newUserStore()), nil)

		ctx := router.NewMockContext()
		bindPayload(ctx, user.CreateInput{Name: "No Email", Password: "long-enough-password"})

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Create(ctx))
		assert.Equal(t, router.StatusBadRequest, status)

		resp, ok := body.(server.ErrorResponse)
		require.True(t, ok)
		assert.Contains(t, resp.FieldErrors, "email")
	})

	t.Run("uncategorized errors map to 500", func(t *testing.T) {
		store := newUserStore()
		store.failWith = goerrors.New("database on fire", goerrors.CategoryInternal)
		ctrl := server.NewUserController(user.NewService(store), nil)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.List(ctx))
		assert.Equal(t, router.StatusInternalServerError, status)

		resp, ok := body.(server.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "Internal Server Error", resp.Message, "internal details must not leak")
	})
}
