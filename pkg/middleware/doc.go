// Package middleware provides the HTTP middleware and instrumentation used by
// the address form server.
//
// # OpenTelemetry
//
// OpenTelemetry traces every request, naming the span after the chi route:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("addressform")))
//
// TraceSubmitter adds a span around each delivery to a submission sink:
//
//	sink := middleware.TraceSubmitter(submit.NewLog(logger), "log")
//
// # Prometheus Metrics
//
// Metrics collects request, submission and validation metrics into its own
// registry. It is also an addressform.Observer:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("addressform"))
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//	f := addressform.New(addressform.WithObserver(m))
//
// # Logging and Recovery
//
// Logger writes one structured log line per request and Recover converts
// handler panics into 500 responses.
package middleware
