package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Contacts
	ContactsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contacts_created_total",
			Help: "Total contacts created via the direct create endpoint",
		},
	)
	UploadsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uploads_stored_total",
			Help: "Total profile pictures stored",
		},
	)

	// CSV import/export
	ImportRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_imports_total",
			Help: "Total CSV import requests by outcome",
		},
		[]string{"outcome"}, // ok|partial|parse_error
	)
	ImportedRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_import_rows_total",
			Help: "Total CSV rows imported successfully",
		},
	)
	ImportRowFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_import_row_failures_total",
			Help: "Total CSV rows that failed to import",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

// Init registers all collectors. Call once at service start.
func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ContactsCreated)
	prometheus.MustRegister(UploadsStored)
	prometheus.MustRegister(ImportRequests)
	prometheus.MustRegister(ImportedRows)
	prometheus.MustRegister(ImportRowFailures)
}
