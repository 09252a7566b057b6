package model

import "time"

type PlanFeature struct {
	Title    string `json:"title"`
	Included bool   `json:"included"`
}

type Plan struct {
	ID            int64         `json:"id"`
	NameEn        string        `json:"name_en"`
	NameAm        string        `json:"name_am"`
	MonthlyPrice  float64       `json:"monthlyPrice"`
	YearlyPrice   float64       `json:"yearlyPrice"`
	DurationDays  int32         `json:"duration"`
	DescriptionEn *string       `json:"description_en,omitempty"`
	DescriptionAm *string       `json:"description_am,omitempty"`
	FeaturesEn    []PlanFeature `json:"features_en"`
	FeaturesAm    []PlanFeature `json:"features_am"`
	Active        bool          `json:"isActive"`
	Hidden        bool          `json:"isHidden"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "TRIAL"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionInactive  SubscriptionStatus = "INACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

type SubscriptionPayment string

const (
	SubscriptionPaymentPending SubscriptionPayment = "PENDING"
	SubscriptionPaymentPaid    SubscriptionPayment = "PAID"
	SubscriptionPaymentFailed  SubscriptionPayment = "FAILED"
)

type Subscription struct {
	ID              int64               `json:"id"`
	PlanID          int64               `json:"planId"`
	StartDate       time.Time           `json:"startDate"`
	EndDate         time.Time           `json:"endDate"`
	PaymentStatus   SubscriptionPayment `json:"paymentStatus"`
	Status          SubscriptionStatus  `json:"subscriptionStatus"`
	IsTrial         bool                `json:"isTrial"`
	BillingCycle    string              `json:"billingCycle"`
	LastPaymentDate *time.Time          `json:"lastPaymentDate,omitempty"`
	NextBillingDate *time.Time          `json:"nextBillingDate,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}
