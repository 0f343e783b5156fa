package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"org-sync-backend/pkg/config"
	mw "org-sync-backend/pkg/middleware"
	"org-sync-backend/pkg/organizations"
	"org-sync-backend/pkg/store"
	"org-sync-backend/pkg/utils"
)

// Handler bundles the dependencies the HTTP layer needs.
type Handler struct {
	config  *config.Config
	service *organizations.Service
	store   store.Store
}

func NewHandler(cfg *config.Config, svc *organizations.Service, st store.Store) *Handler {
	return &Handler{config: cfg, service: svc, store: st}
}

// NewRouter assembles the full route tree.
func NewRouter(cfg *config.Config, svc *organizations.Service, st store.Store) http.Handler {
	h := NewHandler(cfg, svc, st)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(mw.Logger(cfg))
	router.Use(mw.Recovery(cfg))
	router.Use(mw.CORS(cfg))
	router.Use(chimw.Timeout(25 * time.Second))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Heartbeat("/ping"))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", h.RefreshToken)
			r.Post("/dev-token", h.DevToken)
		})

		r.Route("/orgs/{orgid}", func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg))

			r.Get("/", h.GetSnapshot)
			r.Patch("/", h.UpdateOrganization)
			r.Post("/refresh", h.Refresh)
			r.Post("/subscription", h.Subscribe)
			r.Delete("/subscription", h.Unsubscribe)
			r.Get("/events", h.Events)

			r.Get("/concerns", h.ListConcerns)
			r.Get("/profiles/{profileid}/roles", h.RolesOfProfile)
			r.Get("/roles/{roleid}/profiles", h.ProfilesOfRole)
			r.Get("/roles/{roleid}/processes", h.ProcessesOfRole)

			r.Post("/profiles", h.AddProfile)
			r.Patch("/profiles/{profileid}", h.UpdateProfile)
			r.Delete("/profiles/{profileid}", h.RemoveProfile)

			r.Post("/roles", h.CreateRole)
			r.Patch("/roles/{roleid}", h.UpdateRole)
			r.Delete("/roles/{roleid}", h.DeleteRole)
			r.Put("/roles/{roleid}/assignees/{profileid}", h.Assign)
			r.Delete("/roles/{roleid}/assignees/{profileid}", h.Unassign)

			r.Post("/teams", h.CreateTeam)
			r.Patch("/teams/{teamid}", h.UpdateTeam)
			r.Delete("/teams/{teamid}", h.DeleteTeam)

			r.Post("/processes", h.CreateProcess)
			r.Patch("/processes/{processid}", h.UpdateProcess)
			r.Delete("/processes/{processid}", h.DeleteProcess)

			r.Post("/steps", h.CreateStep)
			r.Post("/steps/{stepid}/move", h.MoveStep)
			r.Patch("/steps/{stepid}", h.UpdateStep)
			r.Delete("/steps/{stepid}", h.DeleteStep)
			r.Put("/steps/{stepid}/rci/{kind}/{roleid}", h.AddStepRCI)
			r.Delete("/steps/{stepid}/rci/{kind}/{roleid}", h.RemoveStepRCI)

			r.Post("/changes", h.CreateChange)
			r.Patch("/changes/{changeid}", h.UpdateChange)
			r.Delete("/changes/{changeid}", h.DeleteChange)

			r.Get("/comments", h.GetComments)
			r.Post("/comments", h.AddComment)
			r.Patch("/comments/{commentid}", h.UpdateComment)
			r.Delete("/comments/{commentid}", h.DeleteComment)
		})
	})

	return router
}

// Health reports store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(); err != nil {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "store unreachable: "+err.Error())
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"status": "ok"})
}

// writeServiceError maps service failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.WriteNotFoundResponse(w, err.Error())
	case errors.Is(err, organizations.ErrCycle), errors.Is(err, organizations.ErrRootStep):
		utils.WriteConflictResponse(w, err.Error())
	default:
		utils.WriteInternalServerErrorResponse(w, err.Error())
	}
}
