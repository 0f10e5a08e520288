package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/rbac"
	"github.com/mercato-app/mercato/internal/shared"
)

// Handler exposes product endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs the product handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		rbac:      rbac,
	}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/approved", h.listApproved)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireKind(shared.KindUser))
		r.Post("/", h.add)
		r.Get("/", h.listOwn)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	var req AddProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid request payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.FailValidation(err))
		return
	}
	product, err := h.service.Add(r.Context(), principal.ID, req)
	if err != nil {
		h.logger.Error("add product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKData(w, http.StatusCreated, "Product added", product)
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	filters, err := parseListFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters.UserID = &principal.ID
	h.respondList(w, r, filters)
}

// listApproved is public and only ever serves approved listings.
func (h *Handler) listApproved(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters.Status = string(StatusApproved)
	h.respondList(w, r, filters)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filters ListFilters) {
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKPage(w, "Products fetched", result.Rows, result.Meta)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Get(r.Context(), id, &principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKData(w, http.StatusOK, "Product details fetched", product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid request payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.FailValidation(err))
		return
	}
	product, err := h.service.Update(r.Context(), id, principal.ID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKData(w, http.StatusOK, "Product updated", product)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id, &principal.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Product deleted")
}

func parseListFilters(r *http.Request) (ListFilters, error) {
	req, err := shared.ParsePageRequest(r.URL.Query())
	if err != nil {
		return ListFilters{}, httpx.Fail(httpx.ErrValidation, "Invalid pagination parameters")
	}
	if (req.MinPrice == nil) != (req.MaxPrice == nil) {
		return ListFilters{}, httpx.Fail(httpx.ErrValidation, "Both minPrice and maxPrice are required")
	}
	if req.Status != "" && !ValidStatus(req.Status) {
		return ListFilters{}, httpx.Fail(httpx.ErrValidation, "Unknown product status")
	}
	return ListFilters{PageRequest: req}, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, httpx.Fail(httpx.ErrValidation, "Invalid product id")
	}
	return id, nil
}
