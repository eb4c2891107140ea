package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/backlog-studio/engine/internal/api/handlers"
	mw "github.com/backlog-studio/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret       []byte
	AuthHandler      *handlers.AuthHandler
	ProjectsHandler  *handlers.ProjectsHandler
	WorkItemsHandler *handlers.WorkItemsHandler
	AssistantHandler *handlers.AssistantHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Projects and their work-item trees
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{projectID}", dep.ProjectsHandler.Get)
				pr.Put("/{projectID}", dep.ProjectsHandler.Update)
				pr.Delete("/{projectID}", dep.ProjectsHandler.Delete)

				pr.Route("/{projectID}/work-items", func(wr chi.Router) {
					wr.Get("/", dep.WorkItemsHandler.List)
					wr.Post("/", dep.WorkItemsHandler.Create)
					wr.Get("/{workItemID}", dep.WorkItemsHandler.Get)
					wr.Put("/{workItemID}", dep.WorkItemsHandler.Update)
					wr.Delete("/{workItemID}", dep.WorkItemsHandler.Delete)
					wr.Put("/{workItemID}/status", dep.WorkItemsHandler.SetStatus)
					wr.Put("/{workItemID}/assign", dep.WorkItemsHandler.Assign)
				})
			})

			// Assistant-generated draft approval
			protected.Route("/assistant", func(ar chi.Router) {
				ar.Post("/approve", dep.AssistantHandler.Approve)
			})
		})
	})

	return r
}
