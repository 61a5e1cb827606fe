package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentlink"
	"github.com/stripe/stripe-go/v72/price"
	"github.com/stripe/stripe-go/v72/product"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/config"
)

type paymentLinkRequest struct {
	AmountARS   int64  `json:"amount_ars"`
	DebtorID    string `json:"debtor_id"`
	Currency    string `json:"currency,omitempty"`
	Environment string `json:"environment,omitempty"`
}

type paymentLinkResponse struct {
	PaymentURL    string `json:"payment_url"`
	PaymentLinkID string `json:"payment_link_id"`
	DebtorID      string `json:"debtor_id"`
}

// HandleCreatePaymentLink creates a Stripe payment link for a debt amount,
// giving businesses a card option next to alias/cbu/mp transfers.
func HandleCreatePaymentLink(cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}

		var params paymentLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "Body is not valid JSON.")
			return
		}
		if params.AmountARS <= 0 || params.DebtorID == "" {
			writeError(w, http.StatusBadRequest, "invalid_payload", "amount_ars and debtor_id are required.")
			return
		}

		currency := params.Currency
		if currency == "" {
			currency = "ars"
		}

		if params.Environment == "production" {
			stripe.Key = cfg.StripeAPIKeyLive
		} else {
			stripe.Key = cfg.StripeAPIKeyTest
		}

		prod, err := product.New(&stripe.ProductParams{
			Name: stripe.String("Pago de cuenta pendiente " + ai.FormatAmountARS(params.AmountARS)),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "stripe_product_failed", "failed to create stripe product")
			return
		}

		// Stripe expects minor units.
		p, err := price.New(&stripe.PriceParams{
			Currency:   stripe.String(currency),
			Product:    stripe.String(prod.ID),
			UnitAmount: stripe.Int64(params.AmountARS * 100),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "stripe_price_failed", "failed to create stripe price")
			return
		}

		linkParams := &stripe.PaymentLinkParams{
			LineItems: []*stripe.PaymentLinkLineItemParams{
				{
					Price:    stripe.String(p.ID),
					Quantity: stripe.Int64(1),
				},
			},
			PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		}
		linkParams.AddMetadata("debtor_id", params.DebtorID)

		link, err := paymentlink.New(linkParams)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "stripe_link_failed", "failed to create payment link")
			return
		}

		writeJSON(w, http.StatusOK, paymentLinkResponse{
			PaymentURL:    link.URL,
			PaymentLinkID: link.ID,
			DebtorID:      params.DebtorID,
		})
	})
}
