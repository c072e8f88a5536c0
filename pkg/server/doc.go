// Package server serves the address form over HTTP.
//
// Routes:
//
//	GET  /              empty form page
//	POST /submit        validate and deliver (urlencoded or JSON)
//	POST /validate      error map for the posted values, no delivery
//	POST /reset         cleared form page
//	GET  /ws            live validation; one form per connection
//	GET  /openapi.json  OpenAPI 3 description of /submit and /validate
//	GET  /metrics       Prometheus metrics, when WithMetrics is set
//
// Every request or connection gets its own addressform.Form; instances are
// never shared. Posts to /submit and /validate are rate limited per client
// IP.
//
//	srv, err := server.New(server.DefaultConfig(),
//	    server.WithLogger(logger),
//	    server.WithFormOptions(addressform.WithSubmitter(sink)),
//	)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
