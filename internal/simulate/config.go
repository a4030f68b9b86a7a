package simulate

import (
	"time"

	"github.com/okian/arete/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Users      int           // Number of synthetic users
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where to write the generated plans; empty skips it
	Verbose    bool          // Log every failure
}

// Plan is one synthetic user's values for today.
type Plan struct {
	Username string                     `json:"username"`
	Persona  string                     `json:"persona"`
	Values   map[model.MetricID]float64 `json:"values"`
}

// Stats holds run statistics.
type Stats struct {
	UsersGenerated int
	LogsSubmitted  int
	LogsSuccessful int
	LogsFailed     int
	UsersVerified  int
	Mismatches     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
