// Package server wires the HTTP surface: route table, access guard,
// and controllers. The guard runs globally; only routes listed in the
// public set skip it.
package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
	"github.com/openpress/backend/auth/middleware/guardware"
	"github.com/openpress/backend/template"
	"github.com/openpress/backend/user"
)

// Options carries the collaborators the server needs.
type Options struct {
	Logger    auth.Logger
	Passwords *auth.PasswordStrategy
	Resolver  guardware.IdentityResolver
	Tokens    auth.TokenService
	Users     *user.Service
	Templates *template.Service
}

type Server struct {
	srv    router.Server[*fiber.App]
	logger auth.Logger
}

// publicRoutes is the explicit allow list; everything else is guarded.
var publicRoutes = map[string]bool{
	"POST /auth/login": true,
	"GET /health":      true,
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	guard := guardware.New(guardware.Config{
		Public: func(c router.Context) bool {
			return publicRoutes[c.Method()+" "+c.Path()]
		},
		Resolver: opts.Resolver,
		ContextEnricher: func(ctx context.Context, identity auth.Identity) context.Context {
			return auth.WithIdentity(ctx, identity)
		},
	})

	r := srv.Router()
	r.Use(guard)

	r.Get("/health", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]string{"status": "ok"})
	})

	authCtrl := NewAuthController(opts.Passwords, opts.Tokens, logger)
	r.Post("/auth/login", authCtrl.Login).SetName("auth.login")
	r.Get("/auth/profile", authCtrl.Profile).SetName("auth.profile")
	r.Get("/auth/revalidate", authCtrl.Revalidate).SetName("auth.revalidate")

	userCtrl := NewUserController(opts.Users, logger)
	r.Post("/users", userCtrl.Create).SetName("users.create")
	r.Get("/users", userCtrl.List).SetName("users.list")
	r.Get("/users/:id", userCtrl.Show).SetName("users.show")
	r.Patch("/users/:id", userCtrl.Update).SetName("users.update")
	r.Delete("/users/:id", userCtrl.Delete).SetName("users.delete")

	tplCtrl := NewTemplateController(opts.Templates, logger)
	r.Post("/templates", tplCtrl.Create).SetName("templates.create")
	r.Get("/templates", tplCtrl.List).SetName("templates.list")
	r.Get("/templates/:id", tplCtrl.Show).SetName("templates.show")
	r.Patch("/templates/:id", tplCtrl.Update).SetName("templates.update")
	r.Delete("/templates/:id", tplCtrl.Delete).SetName("templates.delete")

	return &Server{
		srv:    srv,
		logger: logger,
	}
}

// Serve blocks until the listener stops.
func (s *Server) Serve(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("http server listening", "addr", addr)
	return s.srv.Serve(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
