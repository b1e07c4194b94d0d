// Package app wires the sales dashboard together: configuration, logging,
// OpenTelemetry, the sales and health services, the chi router and the HTTP
// server.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, VGSALES_* env vars)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create business metrics, SalesService and HealthService
//	4. Build the router and its middleware chain
//	5. Start the server and load the dataset in the background
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// Tests build an Application with New and drive Router through httptest.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains the server within
// Server.ShutdownTimeout and flushes the OpenTelemetry providers. The app
// never calls os.Exit itself.
package app
