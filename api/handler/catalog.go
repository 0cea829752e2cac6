package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/pkg/httpcontext"
	"github.com/funneldesk/backend/repository"
	funnelUC "github.com/funneldesk/backend/usecase/funnel"
)

// CatalogHandler serves the reference lists the dashboard's dropdowns are
// built from: advisors, products, referrers, client types and statuses.
type CatalogHandler struct {
	baseHandler
	funnel   *funnelUC.UseCase
	products repository.ProductRepository
}

func NewCatalogHandler(funnel *funnelUC.UseCase, products repository.ProductRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		funnel:      funnel,
		products:    products,
	}
}

// @Summary Advisors with recent activity
// @Tags catalog
// @Router /api/v1/advisors [get]
func (h *CatalogHandler) GetAdvisors(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	aliases, err := h.funnel.AdvisorAliases(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, aliases)
}

// @Summary Product catalog
// @Tags catalog
// @Router /api/v1/products [get]
func (h *CatalogHandler) GetProducts(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.products.ListActive(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, products)
}

// @Summary Referrer catalog
// @Tags catalog
// @Router /api/v1/referrers [get]
func (h *CatalogHandler) GetReferrers(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, domain.Referrers())
}

// @Summary Funnel stages and client types
// @Tags catalog
// @Router /api/v1/catalog [get]
func (h *CatalogHandler) GetCatalog(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"statuses":     domain.AllStatuses(),
		"client_types": domain.ClientTypes(),
	})
}
