package paypal

import "strconv"

// Field names below follow PayPal's Orders v2 and Subscriptions v1 schemas.

const (
	IntentCapture = "CAPTURE"

	IntervalUnitMinute = "MINUTE"
	TenureRegular      = "REGULAR"
	// UnlimitedCycles makes a billing cycle repeat until the subscription is cancelled.
	UnlimitedCycles = 0

	SetupFeeFailureContinue = "CONTINUE"
	UserActionSubscribeNow  = "SUBSCRIBE_NOW"
)

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PurchaseUnit struct {
	Amount Money `json:"amount"`
}

type OrderApplicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// OrderRequest is the body of POST /v2/checkout/orders.
type OrderRequest struct {
	Intent             string                   `json:"intent"`
	PurchaseUnits      []PurchaseUnit           `json:"purchase_units"`
	ApplicationContext *OrderApplicationContext `json:"application_context,omitempty"`
}

type Frequency struct {
	IntervalUnit  string `json:"interval_unit"`
	IntervalCount int    `json:"interval_count"`
}

type PricingScheme struct {
	FixedPrice Money `json:"fixed_price"`
}

type BillingCycle struct {
	Frequency     Frequency     `json:"frequency"`
	TenureType    string        `json:"tenure_type"`
	Sequence      int           `json:"sequence"`
	TotalCycles   int           `json:"total_cycles"`
	PricingScheme PricingScheme `json:"pricing_scheme"`
}

type PaymentPreferences struct {
	AutoBillOutstanding     bool   `json:"auto_bill_outstanding"`
	SetupFeeFailureAction   string `json:"setup_fee_failure_action"`
	PaymentFailureThreshold int    `json:"payment_failure_threshold"`
}

// PlanRequest is the body of POST /v1/billing/plans.
type PlanRequest struct {
	ProductID          string             `json:"product_id"`
	Name               string             `json:"name"`
	BillingCycles      []BillingCycle     `json:"billing_cycles"`
	PaymentPreferences PaymentPreferences `json:"payment_preferences"`
}

type SubscriptionApplicationContext struct {
	BrandName  string `json:"brand_name,omitempty"`
	UserAction string `json:"user_action"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
}

// SubscriptionRequest is the body of POST /v1/billing/subscriptions.
type SubscriptionRequest struct {
	PlanID             string                         `json:"plan_id"`
	ApplicationContext SubscriptionApplicationContext `json:"application_context"`
}

// FormatAmount renders v with exactly two decimals. Rounding applies to the exact
// binary value of v with ties to even: 10.005 -> "10.01", 0.125 -> "0.12".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
