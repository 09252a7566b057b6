package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/services"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

func scanPlan(row interface{ Scan(...any) error }) (model.Plan, error) {
	var (
		p             model.Plan
		monthlyPrice  pgtype.Numeric
		yearlyPrice   pgtype.Numeric
		descriptionEn pgtype.Text
		descriptionAm pgtype.Text
		featuresEn    []byte
		featuresAm    []byte
	)
	err := row.Scan(
		&p.ID, &p.NameEn, &p.NameAm, &monthlyPrice, &yearlyPrice, &p.DurationDays,
		&descriptionEn, &descriptionAm, &featuresEn, &featuresAm,
		&p.Active, &p.Hidden, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	p.MonthlyPrice = utils.NumericToFloat64(monthlyPrice)
	p.YearlyPrice = utils.NumericToFloat64(yearlyPrice)
	p.DescriptionEn = textPtr(descriptionEn)
	p.DescriptionAm = textPtr(descriptionAm)
	p.FeaturesEn = []model.PlanFeature{}
	p.FeaturesAm = []model.PlanFeature{}
	if len(featuresEn) > 0 {
		_ = json.Unmarshal(featuresEn, &p.FeaturesEn)
	}
	if len(featuresAm) > 0 {
		_ = json.Unmarshal(featuresAm, &p.FeaturesAm)
	}
	return p, nil
}

const planColumns = `id, name_en, name_am, monthly_price, yearly_price, duration_days,
	description_en, description_am, features_en, features_am,
	is_active, is_hidden, created_at, updated_at`

func (h *Handler) PlansList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `
		select `+planColumns+`
		from plans
		where is_active = true and is_hidden = false
		order by monthly_price
	`)
	if err != nil {
		h.Logger.Error("plans list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch plans")
		return
	}
	defer rows.Close()

	plans := make([]model.Plan, 0, 4)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			h.Logger.Error("plans scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch plans")
			return
		}
		plans = append(plans, p)
	}
	response.Success(w, plans)
}

func (h *Handler) SubscriptionGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := services.GetSubscriptionState(ctx, h.DB, time.Now())
	if err != nil {
		h.Logger.Error("subscription state failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch subscription")
		return
	}

	payload := map[string]any{
		"status":        state.Status,
		"isValid":       state.IsValid,
		"daysRemaining": state.DaysRemaining,
	}
	if state.Subscription != nil {
		payload["subscription"] = state.Subscription
	}
	response.Success(w, payload)
}

type subscribePayload struct {
	PlanID            *int64  `json:"planId"`
	PlanIDSnake       *int64  `json:"plan_id"`
	BillingCycle      *string `json:"billingCycle"`
	BillingCycleSnake *string `json:"billing_cycle"`
}

func (p subscribePayload) planID() *int64        { return pickInt64(p.PlanID, p.PlanIDSnake) }
func (p subscribePayload) billingCycle() *string { return pickString(p.BillingCycle, p.BillingCycleSnake) }

// SubscriptionSubscribe starts a trial when no subscription exists yet;
// otherwise it records a payment and extends the current period.
func (h *Handler) SubscriptionSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body subscribePayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cycle := strings.ToLower(stringOrEmpty(body.billingCycle()))
	if cycle == "" {
		cycle = "monthly"
	}
	if cycle != "monthly" && cycle != "yearly" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Billing cycle must be monthly or yearly")
		return
	}

	now := time.Now()
	state, err := services.GetSubscriptionState(ctx, h.DB, now)
	if err != nil {
		h.Logger.Error("subscription state failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update subscription")
		return
	}

	if state.Subscription == nil {
		planID := body.planID()
		if planID == nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Plan id is required")
			return
		}
		sub, err := services.StartTrial(ctx, h.DB, *planID, h.Config.TrialPeriodDays, now)
		if err != nil {
			h.Logger.Error("trial start failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start trial")
			return
		}
		response.Created(w, sub)
		return
	}

	if err := services.RenewSubscription(ctx, h.DB, state.Subscription.ID, cycle, now); err != nil {
		h.Logger.Error("subscription renew failed", zapError(err))
		response.Error(w, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	state, err = services.GetSubscriptionState(ctx, h.DB, now)
	if err != nil {
		h.Logger.Error("subscription reload failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update subscription")
		return
	}
	response.Success(w, state.Subscription)
}

func (h *Handler) SubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := services.GetSubscriptionState(ctx, h.DB, time.Now())
	if err != nil || state.Subscription == nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "No subscription to cancel")
		return
	}

	if err := services.CancelSubscription(ctx, h.DB, state.Subscription.ID); err != nil {
		h.Logger.Error("subscription cancel failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel subscription")
		return
	}
	response.Success(w, map[string]any{"cancelled": true})
}
