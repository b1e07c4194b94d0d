// Package services implements the business logic layer of the sales dashboard.
// It sits between the HTTP handlers and the dataprocessing package so that
// handlers only parse requests and render results.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Dependencies are injected through constructors
//	2. Every operation takes a context for cancellation and tracing
//	3. The dataset is loaded once per process and shared read-only
//	4. Errors are domain sentinels that the transport layer maps to HTTP
//
// # Available Services
//
//	- SalesService: dataset status, column metadata, filtering, aggregates and export
//	- HealthService: liveness, readiness (ready once the dataset has loaded) and version
//
// # Usage
//
//	svc := services.NewSalesService(cfg.Dataset, nil, metrics, logger)
//	if err := svc.Warmup(ctx); err != nil {
//	    // the server still starts; queries answer 503
//	}
//
//	spec, err := svc.ResolveFilter(ctx, services.FilterRequest{Platforms: []string{"Wii"}, Genres: []string{"Sports"}})
//	overview, err := svc.Overview(ctx, spec)
//
// # Error Handling
//
//	- ErrDatasetUnavailable wraps the *dataprocessing.LoadError of a failed load
//	- ErrInvalidFilter for negative year bounds, limits or top-N sizes
//	- ErrUnsupportedFormat for export formats other than csv and xlsx
//	- *dataprocessing.EmptyInputError passes through from Summary and Range
package services
