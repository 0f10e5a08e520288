// Package moderation exposes the admin panel: user account and product
// listing management. All routes require an admin token; the role policy is
// per route.
package moderation

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/products"
	"github.com/mercato-app/mercato/internal/rbac"
	"github.com/mercato-app/mercato/internal/shared"
	"github.com/mercato-app/mercato/internal/users"
)

// Handler serves the users-management and products-management routes.
type Handler struct {
	logger   *slog.Logger
	users    *users.Service
	products *products.Service
	rbac     rbac.Middleware
}

// NewHandler constructs the moderation handler.
func NewHandler(logger *slog.Logger, users *users.Service, products *products.Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, users: users, products: products, rbac: rbac}
}

// MountRoutes registers the admin panel under the given router. Viewing and
// suspension require the Admin role; deletion is open to every admin role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireKind(shared.KindAdmin))

	r.Route("/users-management", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRoles(rbac.RoleAdmin))
			r.Get("/users", h.listUsers)
			r.Get("/users/{id}", h.viewUser)
			r.Patch("/users/{id}/suspend", h.suspendUser)
			r.Patch("/users/{id}/unsuspend", h.unsuspendUser)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRoles(rbac.AllRoles()...))
			r.Delete("/users/{id}", h.deleteUser)
		})
	})

	r.Route("/products-management", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRoles(rbac.RoleAdmin))
			r.Get("/products", h.listProducts)
			r.Get("/products/{id}", h.viewProduct)
			r.Patch("/products/{id}/suspend", h.suspendProduct)
			r.Patch("/products/{id}/unsuspend", h.unsuspendProduct)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRoles(rbac.AllRoles()...))
			r.Delete("/products/{id}", h.deleteProduct)
		})
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	req, err := shared.ParsePageRequest(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid pagination parameters"))
		return
	}
	if req.Status != "" && !users.ValidStatus(req.Status) {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Unknown user status"))
		return
	}
	result, err := h.users.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKPage(w, "Users fetched", result.Rows, result.Meta)
}

func (h *Handler) viewUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKData(w, http.StatusOK, "User details fetched", user)
}

func (h *Handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	h.changeUserStatus(w, r, users.StatusSuspended, "User suspended")
}

func (h *Handler) unsuspendUser(w http.ResponseWriter, r *http.Request) {
	h.changeUserStatus(w, r, users.StatusApproved, "Suspension removed")
}

func (h *Handler) changeUserStatus(w http.ResponseWriter, r *http.Request, status users.Status, message string) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.users.ChangeStatus(r.Context(), id, status); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, message)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "User deleted")
}

// listProducts serves every listing regardless of owner or status.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	req, err := shared.ParsePageRequest(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid pagination parameters"))
		return
	}
	if (req.MinPrice == nil) != (req.MaxPrice == nil) {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Both minPrice and maxPrice are required"))
		return
	}
	if req.Status != "" && !products.ValidStatus(req.Status) {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Unknown product status"))
		return
	}
	result, err := h.products.List(r.Context(), products.ListFilters{PageRequest: req})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKPage(w, "Products fetched", result.Rows, result.Meta)
}

func (h *Handler) viewProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.products.Get(r.Context(), id, nil)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKData(w, http.StatusOK, "Product details fetched", product)
}

func (h *Handler) suspendProduct(w http.ResponseWriter, r *http.Request) {
	h.changeProductStatus(w, r, products.StatusSuspended, "Product suspended")
}

func (h *Handler) unsuspendProduct(w http.ResponseWriter, r *http.Request) {
	h.changeProductStatus(w, r, products.StatusApproved, "Suspension removed")
}

func (h *Handler) changeProductStatus(w http.ResponseWriter, r *http.Request, status products.Status, message string) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.products.ChangeStatus(r.Context(), id, status); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, message)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.products.Delete(r.Context(), id, nil); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Product removed")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, httpx.Fail(httpx.ErrValidation, "Invalid id")
	}
	return id, nil
}
