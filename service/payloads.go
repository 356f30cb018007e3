package service

import (
	"paypal-gateway/models"
	"paypal-gateway/paypal"
)

// Plans bill every minute so a sandbox subscription can be watched end to end.
const (
	planIntervalUnit            = paypal.IntervalUnitMinute
	planIntervalCount           = 1
	planPaymentFailureThreshold = 3
)

// BuildOrderRequest maps a one-time payment onto a single-unit CAPTURE order.
func BuildOrderRequest(req *models.OneTimePaymentRequest) paypal.OrderRequest {
	return paypal.OrderRequest{
		Intent: paypal.IntentCapture,
		PurchaseUnits: []paypal.PurchaseUnit{{
			Amount: paypal.Money{
				CurrencyCode: req.Currency,
				Value:        paypal.FormatAmount(req.Amount),
			},
		}},
		ApplicationContext: &paypal.OrderApplicationContext{
			ReturnURL: req.ReturnURL,
			CancelURL: req.CancelURL,
		},
	}
}

// BuildPlanRequest builds an unlimited per-minute plan under productID.
func BuildPlanRequest(req *models.SubscriptionRequest, productID string) paypal.PlanRequest {
	return paypal.PlanRequest{
		ProductID: productID,
		Name:      req.PlanName,
		BillingCycles: []paypal.BillingCycle{{
			Frequency: paypal.Frequency{
				IntervalUnit:  planIntervalUnit,
				IntervalCount: planIntervalCount,
			},
			TenureType:  paypal.TenureRegular,
			Sequence:    1,
			TotalCycles: paypal.UnlimitedCycles,
			PricingScheme: paypal.PricingScheme{
				FixedPrice: paypal.Money{
					CurrencyCode: req.Currency,
					Value:        paypal.FormatAmount(req.Price),
				},
			},
		}},
		PaymentPreferences: paypal.PaymentPreferences{
			AutoBillOutstanding:     true,
			SetupFeeFailureAction:   paypal.SetupFeeFailureContinue,
			PaymentFailureThreshold: planPaymentFailureThreshold,
		},
	}
}

// BuildSubscriptionRequest subscribes the buyer to planID with SUBSCRIBE_NOW approval.
func BuildSubscriptionRequest(req *models.SubscriptionRequest, planID, brandName string) paypal.SubscriptionRequest {
	return paypal.SubscriptionRequest{
		PlanID: planID,
		ApplicationContext: paypal.SubscriptionApplicationContext{
			BrandName:  brandName,
			UserAction: paypal.UserActionSubscribeNow,
			ReturnURL:  req.ReturnURL,
			CancelURL:  req.CancelURL,
		},
	}
}
