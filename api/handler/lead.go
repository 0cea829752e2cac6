package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/api/transport"
	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/pkg/httpcontext"
	"github.com/funneldesk/backend/repository"
	funnelUC "github.com/funneldesk/backend/usecase/funnel"
)

const dateLayout = "2006-01-02"

type LeadHandler struct {
	baseHandler
	uc *funnelUC.UseCase
}

func NewLeadHandler(uc *funnelUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List leads
// @Tags leads
// @Router /api/v1/leads [get]
func (h *LeadHandler) GetLeads(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	filter, ok := h.parseFilter(ctx)
	if !ok {
		return
	}
	// Advisors see their own pipeline; cross-advisor scoping is reserved
	// for the report endpoints.
	filter.OwnerID = actor

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leads, err := h.uc.ListLeads(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, leads)
}

// @Summary Get one lead
// @Tags leads
// @Router /api/v1/leads/{id} [get]
func (h *LeadHandler) GetLead(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing lead id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lead, err := h.uc.GetLead(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, lead)
}

// @Summary Register a lead
// @Tags leads
// @Router /api/v1/leads [post]
func (h *LeadHandler) CreateLead(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	lead, ok := h.parseLead(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateLead(stdCtx, lead, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Edit a lead
// @Tags leads
// @Router /api/v1/leads/{id} [patch]
func (h *LeadHandler) UpdateLead(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing lead id", nil))
		return
	}

	var req transport.LeadUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	update, err := buildUpdate(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateLead(stdCtx, id, update, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Edit several leads
// @Tags leads
// @Router /api/v1/leads/batch [patch]
func (h *LeadHandler) BatchUpdate(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.BatchUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.Edits) == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	edits := make([]funnelUC.Edit, 0, len(req.Edits))
	for _, e := range req.Edits {
		update, err := buildUpdate(e.Update)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		edits = append(edits, funnelUC.Edit{ID: e.ID, Update: update})
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	applied, err := h.uc.BatchUpdate(stdCtx, edits, actor)
	result := map[string]interface{}{
		"applied": applied,
		"total":   len(edits),
	}
	if err != nil {
		result["failures"] = err.Error()
		// Partial application still answers 200; the body reports what
		// was skipped.
		if applied == 0 {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), err.Error(), result))
			return
		}
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Delete leads
// @Tags leads
// @Router /api/v1/leads [delete]
func (h *LeadHandler) DeleteLeads(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.DeleteLeadsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.DeleteLeads(stdCtx, req.IDs, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *LeadHandler) parseLead(ctx *fasthttp.RequestCtx) (*domain.Lead, bool) {
	var req transport.LeadRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return nil, false
	}

	estimated := domain.NormalizeAmount(req.EstimatedAmount)
	if estimated == nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed estimated amount", nil))
		return nil, false
	}

	lead := &domain.Lead{
		OwnerID:         req.OwnerID,
		Advisor:         req.Advisor,
		Client:          req.Client,
		Referrer:        req.Referrer,
		Product:         req.Product,
		ClientType:      req.ClientType,
		Status:          domain.Status(req.Status),
		EstimatedAmount: *estimated,
		Probability:     domain.NormalizeProbability(req.Probability),
		Note:            req.Note,
	}
	if req.RealizedAmount != "" {
		realized := domain.NormalizeAmount(req.RealizedAmount)
		if realized == nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed realized amount", nil))
			return nil, false
		}
		lead.RealizedAmount = realized
	}
	if req.CaptureDate != "" {
		parsed, err := time.Parse(dateLayout, req.CaptureDate)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed capture date", nil))
			return nil, false
		}
		lead.CaptureDate = parsed
	}
	return lead, true
}

func (h *LeadHandler) parseFilter(ctx *fasthttp.RequestCtx) (repository.LeadFilter, bool) {
	args := ctx.QueryArgs()
	filter := repository.LeadFilter{
		Status:     domain.Status(args.Peek("status")),
		ClientType: string(args.Peek("client_type")),
		Product:    string(args.Peek("product")),
		Limit:      parseInt(string(args.Peek("limit")), 0),
	}
	if raw := string(args.Peek("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed from date", nil))
			return filter, false
		}
		filter.DateFrom = &parsed
	}
	if raw := string(args.Peek("to")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed to date", nil))
			return filter, false
		}
		end := parsed.AddDate(0, 0, 1) // inclusive day in the query string
		filter.DateToExclusive = &end
	}
	return filter, true
}

// buildUpdate normalizes a partial edit into repository form, rejecting
// malformed amounts and statuses before they reach the store.
func buildUpdate(req transport.LeadUpdateRequest) (repository.LeadUpdate, error) {
	var update repository.LeadUpdate
	if req.CaptureDate != nil {
		parsed, err := time.Parse(dateLayout, *req.CaptureDate)
		if err != nil {
			return update, domain.NewError(domain.ErrCodeInvalid, "malformed capture date")
		}
		update.CaptureDate = &parsed
	}
	update.Client = req.Client
	update.Referrer = req.Referrer
	update.Product = req.Product
	update.ClientType = req.ClientType
	update.Note = req.Note
	update.Probability = req.Probability
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if req.EstimatedAmount != nil {
		estimated := domain.NormalizeAmount(*req.EstimatedAmount)
		if estimated == nil {
			return update, domain.NewError(domain.ErrCodeInvalid, "malformed estimated amount")
		}
		update.EstimatedAmount = estimated
	}
	if req.RealizedAmount != nil {
		realized := domain.NormalizeAmount(*req.RealizedAmount)
		if realized == nil {
			return update, domain.NewError(domain.ErrCodeInvalid, "malformed realized amount")
		}
		update.RealizedAmount = realized
	}
	return update, nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
