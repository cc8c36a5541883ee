package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DepositsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolacup_deposits_created_total",
		Help: "PIX charges created for deposit sessions.",
	})
	DepositsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolacup_deposits_confirmed_total",
		Help: "Deposit sessions that reached the confirmed state.",
	})
	DepositPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bolacup_deposit_polls_total",
		Help: "Provider status polls by outcome.",
	}, []string{"outcome"})
	BetsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolacup_bets_placed_total",
		Help: "Bets accepted and stored.",
	})
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bolacup_webhook_events_total",
		Help: "Account events handed to the notifier.",
	}, []string{"kind"})
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer serves /metrics and /healthz on its own listener so
// scrapes never mix with API traffic.
func StartMetricsServer(addr string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if healthFn != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()

			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unhealthy: " + err.Error()))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
