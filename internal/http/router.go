package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"checkclient/internal/analytics"
	"checkclient/internal/auth"
	"checkclient/internal/billing"
	"checkclient/internal/checklist"
	"checkclient/internal/config"
	"checkclient/internal/export"
	"checkclient/internal/http/handler"
	mw "checkclient/internal/http/middleware"
	"checkclient/internal/share"
	"checkclient/internal/upload"
)

type Deps struct {
	Checklists *checklist.Service
	Gateway    *share.Gateway
	Aggregator *analytics.Aggregator
	Tracker    *analytics.Tracker
	Users      *auth.Registry
	JWT        *auth.JWT
	Exporter   export.Exporter
	Payments   billing.PaymentProcessor
	Uploads    upload.Store
	Log        *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Logger(d.Log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Users: d.Users, JWT: d.JWT}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Users: d.Users}
	r.With(auth.RequireAuth(d.JWT)).Get("/me", me.Me)

	ch := &handler.ChecklistHandler{Svc: d.Checklists, Exporter: d.Exporter, Events: d.Tracker, Files: d.Uploads, Log: d.Log}
	pub := &handler.PublicHandler{Gateway: d.Gateway, Log: d.Log}

	r.Route("/checklists", func(r chi.Router) {
		r.Post("/", ch.Create)
		r.Get("/", ch.List)
		r.Get("/export", ch.ExportCSV)

		r.Route("/public/{token}", func(r chi.Router) {
			r.Get("/", pub.Get)
			r.Post("/", pub.Submit)
		})

		r.Get("/{id}", ch.Get)
		r.Get("/{id}/file/{fieldName}", ch.DownloadFile)
		r.Patch("/{id}", ch.UpdateStatus)
		r.Delete("/{id}", ch.Delete)
	})

	an := &handler.AnalyticsHandler{Agg: d.Aggregator, Tracker: d.Tracker}
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/data", an.Data)
		r.Post("/track", an.Track)
	})

	bh := &handler.BillingHandler{Processor: d.Payments, Events: d.Tracker}
	r.Post("/billing/subscribe", bh.Subscribe)

	return r
}
