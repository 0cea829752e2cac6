package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/api/transport"
	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/pkg/httpcontext"
	"github.com/funneldesk/backend/repository"
	reportUC "github.com/funneldesk/backend/usecase/report"
)

type ReportHandler struct {
	baseHandler
	uc *reportUC.UseCase
}

func NewReportHandler(uc *reportUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Per-advisor dashboard rows for a month
// @Tags reports
// @Router /api/v1/reports/summary [get]
func (h *ReportHandler) GetSummary(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	period, ok := h.parsePeriod(ctx)
	if !ok {
		return
	}
	clientType := string(ctx.QueryArgs().Peek("client_type"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rows, err := h.uc.Summaries(stdCtx, period, clientType)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rows)
}

// @Summary Day-by-day capture series for a month
// @Tags reports
// @Router /api/v1/reports/daily [get]
func (h *ReportHandler) GetDaily(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	period, ok := h.parsePeriod(ctx)
	if !ok {
		return
	}
	args := ctx.QueryArgs()
	filter := repository.LeadFilter{
		OwnerID:    string(args.Peek("advisor_id")),
		ClientType: string(args.Peek("client_type")),
	}
	cumulative := string(args.Peek("cumulative")) == "true"

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	points, err := h.uc.Daily(stdCtx, period, filter, cumulative)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, points)
}

// @Summary Clients stuck at the first stage
// @Tags reports
// @Router /api/v1/reports/stalled [get]
func (h *ReportHandler) GetStalled(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	args := ctx.QueryArgs()
	filter := repository.LeadFilter{
		OwnerID: string(args.Peek("advisor_id")),
	}
	if raw := string(args.Peek("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed from date", nil))
			return
		}
		filter.DateFrom = &parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	clients, err := h.uc.Stalled(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, clients)
}

func (h *ReportHandler) parsePeriod(ctx *fasthttp.RequestCtx) (time.Time, bool) {
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
