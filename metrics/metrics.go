package metrics

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
)

// Configuration for metrics collection
type Config struct {
	Enabled bool
	Port    int
	Path    string
}

var config Config

// Init loads the configuration from the environment and starts the
// /metrics and /health endpoint when enabled
func Init() error {
	config = Config{
		Enabled: getEnvBool("METRICS_ENABLED", true),
		Port:    getEnvInt("METRICS_PORT", 8081),
		Path:    getEnvString("METRICS_PATH", "/metrics"),
	}

	if !config.Enabled {
		log.Printf("[METRICS] Metrics collection is disabled")
		return nil
	}

	log.Printf("[METRICS] Initializing metrics system on port %d", config.Port)
	go startMetricsServer()

	return nil
}

func startMetricsServer() {
	mux := http.NewServeMux()

	mux.HandleFunc(config.Path, func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("127.0.0.1:%d", config.Port)
	log.Printf("[METRICS] Starting metrics server on %s%s", addr, config.Path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[METRICS] Error starting metrics server: %v", err)
	}
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return config.Enabled
}

// GetMetricsSummary returns a summary of current metrics (for debugging)
func GetMetricsSummary() map[string]interface{} {
	if !IsEnabled() {
		return map[string]interface{}{
			"enabled": false,
		}
	}

	return map[string]interface{}{
		"enabled":  true,
		"relay":    "tracked via dealbot_relay_messages_total",
		"workflow": "tracked via dealbot_workflow_transitions_total",
		"commands": "tracked via dealbot_slash_commands_total",
		"endpoint": config.Path,
		"port":     config.Port,
	}
}

// incCounter bumps a counter whose labels are part of the name, the way
// VictoriaMetrics/metrics expects them
func incCounter(name string) {
	metrics.GetOrCreateCounter(name).Inc()
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
