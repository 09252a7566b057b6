package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"suq-dashboard-service/internal/model"
)

type SubscriptionState struct {
	Subscription  *model.Subscription
	Status        model.SubscriptionStatus
	IsValid       bool
	DaysRemaining *int
}

// GetSubscriptionState loads the business subscription and derives its
// effective status. A subscription past its end date reads as EXPIRED even
// before the row is updated; CANCELLED is preserved as-is.
func GetSubscriptionState(ctx context.Context, db *pgxpool.Pool, now time.Time) (SubscriptionState, error) {
	state := SubscriptionState{Status: model.SubscriptionInactive}

	var sub model.Subscription
	var rawStatus, rawPayment string
	var lastPayment, nextBilling pgtype.Timestamptz
	err := db.QueryRow(ctx, `
		select id, plan_id, start_date, end_date, payment_status, subscription_status,
			is_trial, billing_cycle, last_payment_date, next_billing_date, created_at, updated_at
		from subscriptions
		order by created_at desc
		limit 1
	`).Scan(
		&sub.ID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &rawPayment, &rawStatus,
		&sub.IsTrial, &sub.BillingCycle, &lastPayment, &nextBilling, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil
		}
		return state, err
	}
	sub.PaymentStatus = model.SubscriptionPayment(rawPayment)
	sub.Status = model.SubscriptionStatus(rawStatus)
	if lastPayment.Valid {
		t := lastPayment.Time
		sub.LastPaymentDate = &t
	}
	if nextBilling.Valid {
		t := nextBilling.Time
		sub.NextBillingDate = &t
	}

	state.Subscription = &sub
	state.Status = sub.Status

	switch sub.Status {
	case model.SubscriptionCancelled, model.SubscriptionInactive:
		return state, nil
	}

	if now.After(sub.EndDate) {
		state.Status = model.SubscriptionExpired
		zero := 0
		state.DaysRemaining = &zero
		return state, nil
	}

	days := int(math.Ceil(sub.EndDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	state.DaysRemaining = &days
	state.IsValid = true
	return state, nil
}

// StartTrial opens a TRIAL subscription on the given plan for the configured
// trial window.
func StartTrial(ctx context.Context, db *pgxpool.Pool, planID int64, trialDays int, now time.Time) (*model.Subscription, error) {
	sub := &model.Subscription{
		PlanID:        planID,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, trialDays),
		PaymentStatus: model.SubscriptionPaymentPending,
		Status:        model.SubscriptionTrial,
		IsTrial:       true,
		BillingCycle:  "monthly",
	}
	err := db.QueryRow(ctx, `
		insert into subscriptions (plan_id, start_date, end_date, payment_status, subscription_status, is_trial, billing_cycle, updated_at)
		values ($1,$2,$3,$4,$5,true,$6, now())
		returning id, created_at, updated_at
	`, sub.PlanID, sub.StartDate, sub.EndDate, string(sub.PaymentStatus), string(sub.Status), sub.BillingCycle).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// RenewSubscription records a successful payment and extends the period by
// one billing cycle from whichever is later, the current end date or now.
func RenewSubscription(ctx context.Context, db *pgxpool.Pool, subscriptionID int64, billingCycle string, now time.Time) error {
	months := 1
	if billingCycle == "yearly" {
		months = 12
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var endDate time.Time
	var rawStatus string
	if err := tx.QueryRow(ctx, `
		select end_date, subscription_status from subscriptions where id = $1 for update
	`, subscriptionID).Scan(&endDate, &rawStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("subscription not found")
		}
		return err
	}
	if model.SubscriptionStatus(rawStatus) == model.SubscriptionCancelled {
		return errors.New("cancelled subscription cannot be renewed")
	}

	base := endDate
	if now.After(base) {
		base = now
	}
	newEnd := base.AddDate(0, months, 0)

	if _, err := tx.Exec(ctx, `
		update subscriptions
		set subscription_status = $1, payment_status = $2, is_trial = false,
			billing_cycle = $3, end_date = $4, last_payment_date = $5, next_billing_date = $4,
			updated_at = now()
		where id = $6
	`, string(model.SubscriptionActive), string(model.SubscriptionPaymentPaid), billingCycle, newEnd, now, subscriptionID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelSubscription marks the subscription CANCELLED. The row is kept so the
// billing history survives.
func CancelSubscription(ctx context.Context, db *pgxpool.Pool, subscriptionID int64) error {
	tag, err := db.Exec(ctx, `
		update subscriptions set subscription_status = $1, updated_at = now() where id = $2
	`, string(model.SubscriptionCancelled), subscriptionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("subscription not found")
	}
	return nil
}
