package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"vgsales/pkg/contracts"
	"vgsales/pkg/contracts/domain"
)

// DatasetStatusProvider reports the state of the sales dataset.
type DatasetStatusProvider interface {
	Status(ctx context.Context) domain.DatasetStatus
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetStatusProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, dataset DatasetStatusProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only once the dataset has loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	dataset := hs.checkDatasetHealth(ctx)

	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]interface{}{"dataset": dataset},
	}
	if dataset.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":     hs.version,
		"git_commit":  info.GitCommit,
		"api_version": info.APIVersion,
		"data_format": info.DataFormat,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not initialized"}
	}

	st := hs.dataset.Status(ctx)
	if !st.Loaded {
		return ServiceHealth{Status: "not_ready", Message: st.Error}
	}
	return ServiceHealth{Status: "ready", Message: "dataset loaded from " + st.Source, Rows: st.Rows}
}
