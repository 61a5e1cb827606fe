package api

import (
	"net/http"

	h "cobrosmart/internal/api/handlers"
	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/middleware"
	"cobrosmart/internal/store"
)

func NewRouter(cfg *config.Config, ds store.Datastore, pipeline *collection.Pipeline) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/up", h.HealthCheck)

	// Debtors
	mux.Handle("/debtors", h.HandleListDebtors(cfg, ds))
	mux.Handle("/debtors/", h.HandleDebtorRoutes(cfg, ds, pipeline)) // note the trailing slash
	mux.Handle("/import", h.HandleImport(cfg, ds))

	// Business settings
	mux.Handle("/settings", h.HandleSettings(cfg, ds))

	// Stripe
	mux.Handle("/payment-link", h.HandleCreatePaymentLink(cfg))

	// Twilio
	mux.Handle("/send-sms", h.HandleSendSMS(cfg, ds))

	var handler http.Handler = mux
	handler = middleware.Logging(handler)

	return handler
}
