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
	goalUC "github.com/funneldesk/backend/usecase/goal"
)

type GoalHandler struct {
	baseHandler
	uc *goalUC.UseCase
}

func NewGoalHandler(uc *goalUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Set an advisor's monthly target
// @Tags goals
// @Router /api/v1/admin/goals [put]
func (h *GoalHandler) UpsertGoal(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.GoalRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.AdvisorID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	amount := domain.NormalizeAmount(req.Amount)
	if amount == nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed amount", nil))
		return
	}
	period, err := time.Parse(dateLayout, req.Period)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed period", nil))
		return
	}

	goal := &domain.MonthlyGoal{
		AdvisorID:    req.AdvisorID,
		AdvisorAlias: req.AdvisorAlias,
		Period:       period,
		Amount:       *amount,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	saved, err := h.uc.Upsert(stdCtx, goal, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, saved)
}

// @Summary List goals for a month
// @Tags goals
// @Router /api/v1/goals [get]
func (h *GoalHandler) GetGoals(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	period, ok := h.parsePeriod(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	goals, err := h.uc.ListForPeriod(stdCtx, period)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, goals)
}

// @Summary Get own goal for a month
// @Tags goals
// @Router /api/v1/goals/mine [get]
func (h *GoalHandler) GetOwnGoal(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	period, ok := h.parsePeriod(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	goal, err := h.uc.Get(stdCtx, actor, period)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, goal)
}

// parsePeriod reads the month selector, defaulting to the current month.
func (h *GoalHandler) parsePeriod(ctx *fasthttp.RequestCtx) (time.Time, bool) {
	raw := string(ctx.QueryArgs().Peek("period"))
	if raw == "" {
		return time.Now().UTC(), true
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed period", nil))
		return time.Time{}, false
	}
	return parsed, true
}
