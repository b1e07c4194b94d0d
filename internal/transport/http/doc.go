// Package http implements the HTTP handlers of the sales dashboard API.
// Handlers are a thin layer over the services package: they parse the query
// string, call a service and render JSON with go-chi/render.
//
// # Routes
//
//	GET /api/health, /api/health/ready, /api/health/live, /api/health/version
//	GET /api/sales/dataset
//	GET /api/sales/columns/{column}/values
//	GET /api/sales/columns/{column}/range
//	GET /api/sales/filters/default
//	GET /api/sales/records?limit=
//	GET /api/sales/aggregates/{platforms|regions|yearly|genres|top-games|top-publishers|summary}
//	GET /api/sales/overview
//	GET /api/sales/export?format=csv|xlsx
//	GET /metrics
//
// # Filters
//
// Filtered endpoints read year_min, year_max and repeated platform and genre
// parameters. FilterCtx validates them and stores the resolved FilterSpec in
// the request context. Missing year bounds default to the dataset's Year
// range; missing platform or genre lists select nothing.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by internal/errors:
//
//	{
//	    "type": "/errors/data/no-data",
//	    "title": "No Data For Selection",
//	    "status": 422,
//	    "detail": "summary metrics: empty input",
//	    "instance": "/api/sales/aggregates/summary",
//	    "error_code": "NO_DATA_FOR_SELECTION"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// SalesServiceInterface.
package http
