package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/api/transport"
	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/pkg/httpcontext"
	"github.com/funneldesk/backend/repository"
	observationUC "github.com/funneldesk/backend/usecase/observation"
)

type ObservationHandler struct {
	baseHandler
	uc *observationUC.UseCase
}

func NewObservationHandler(uc *observationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ObservationHandler {
	return &ObservationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List own observations
// @Tags observations
// @Router /api/v1/observations [get]
func (h *ObservationHandler) GetObservations(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	pendingOnly := string(ctx.QueryArgs().Peek("pending")) == "true"

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.ListForAdvisor(stdCtx, actor, pendingOnly)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary List observations across advisors
// @Tags observations
// @Router /api/v1/admin/observations [get]
func (h *ObservationHandler) GetAllObservations(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	filter := repository.ObservationFilter{
		AdvisorID:   string(ctx.QueryArgs().Peek("advisor_id")),
		PendingOnly: string(ctx.QueryArgs().Peek("pending")) == "true",
	}
	if raw := string(ctx.QueryArgs().Peek("from")); raw != "" {
		if parsed, err := time.Parse(dateLayout, raw); err == nil {
			filter.CreatedFrom = &parsed
		}
	}
	if raw := string(ctx.QueryArgs().Peek("to")); raw != "" {
		if parsed, err := time.Parse(dateLayout, raw); err == nil {
			end := parsed.AddDate(0, 0, 1)
			filter.CreatedToExclusive = &end
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.ListAll(stdCtx, filter, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Create an observation
// @Tags observations
// @Router /api/v1/admin/observations [post]
func (h *ObservationHandler) CreateObservation(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.ObservationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	obs := &domain.Observation{
		AdvisorID:    req.AdvisorID,
		AdvisorAlias: req.AdvisorAlias,
		Client:       req.Client,
		Message:      req.Message,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, obs, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Mark observations done
// @Tags observations
// @Router /api/v1/observations/done [post]
func (h *ObservationHandler) MarkDone(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.MarkDoneRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.IDs) == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	changed, err := h.uc.MarkDone(stdCtx, req.IDs, actor)
	result := map[string]interface{}{
		"completed": changed,
		"total":     len(req.IDs),
	}
	if err != nil {
		result["failures"] = err.Error()
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Reopen an observation
// @Tags observations
// @Router /api/v1/admin/observations/{id}/reopen [post]
func (h *ObservationHandler) Reopen(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing observation id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Reopen(stdCtx, id, actor); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete an observation
// @Tags observations
// @Router /api/v1/admin/observations/{id} [delete]
func (h *ObservationHandler) DeleteObservation(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing observation id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id, actor); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
