package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/api/transport"
	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/pkg/httpcontext"
	settingsUC "github.com/funneldesk/backend/usecase/settings"
)

type SettingsHandler struct {
	baseHandler
	store *settingsUC.Store
}

func NewSettingsHandler(store *settingsUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary Current traffic-light thresholds
// @Tags settings
// @Router /api/v1/settings/thresholds [get]
func (h *SettingsHandler) GetThresholds(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.store.Thresholds())
}

// @Summary Replace traffic-light thresholds
// @Tags settings
// @Router /api/v1/admin/settings/thresholds [put]
func (h *SettingsHandler) UpdateThresholds(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.ThresholdsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.Update(stdCtx, domain.Thresholds{RedMax: req.RedMax, YellowMax: req.YellowMax}, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
