package contract

import (
	"strings"
	"time"
)

// Table names owned by the record gateway.
const (
	TableMedications   = "medications"
	TableAppointments  = "appointments"
	TableHealthMetrics = "health_metrics"
)

// AppointmentStatus is the lifecycle state of an appointment row.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// MetricType is the closed set of health metric categories.
type MetricType string

const (
	MetricBloodPressure    MetricType = "blood_pressure"
	MetricBloodSugar       MetricType = "blood_sugar"
	MetricWeight           MetricType = "weight"
	MetricTemperature      MetricType = "temperature"
	MetricHeartRate        MetricType = "heart_rate"
	MetricOxygenSaturation MetricType = "oxygen_saturation"
)

// ParseMetricType normalizes and validates a metric type name.
func ParseMetricType(raw string) (MetricType, bool) {
	mt := MetricType(strings.ToLower(strings.TrimSpace(raw)))
	switch mt {
	case MetricBloodPressure, MetricBloodSugar, MetricWeight,
		MetricTemperature, MetricHeartRate, MetricOxygenSaturation:
		return mt, true
	}
	return "", false
}

// Medication is one medication row. Deletion from the agent-facing tools
// is logical only: Active flips to false, the row stays.
type Medication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Appointment is one appointment row.
type Appointment struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	DoctorName string            `json:"doctor_name"`
	Specialty  string            `json:"specialty"`
	DateTime   time.Time         `json:"date_time"`
	Location   string            `json:"location"`
	Notes      string            `json:"notes,omitempty"`
	Status     AppointmentStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// HealthMetric is one logged measurement. Value is free-form text whose
// shape depends on the metric type, e.g. "120/80" vs "98.6".
type HealthMetric struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	MetricType MetricType `json:"metric_type"`
	Value      string     `json:"value"`
	Unit       string     `json:"unit"`
	Notes      string     `json:"notes,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
