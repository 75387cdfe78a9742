package airquality

import (
	"time"
)

// Quality is the ordinal air-quality label derived from a ppm concentration.
type Quality string

const (
	QualityUnknown   Quality = "Unknown"
	QualityGood      Quality = "Good"
	QualityModerate  Quality = "Moderate"
	QualityPoor      Quality = "Poor"
	QualityDangerous Quality = "Dangerous"
)

// Reading is a single persisted sensor reading. Readings are append-only.
type Reading struct {
	ID          string    `json:"id"`
	PPM         float64   `json:"ppm"`
	AirQuality  Quality   `json:"airQuality"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	Motion      bool      `json:"motion"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
}

// Snapshot is the volatile realtime view of the last reading pushed by the device.
// The zero value is the initial all-null snapshot.
type Snapshot struct {
	PPM         *float64   `json:"ppm"`
	AirQuality  *Quality   `json:"airQuality"`
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	Motion      bool       `json:"motion"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Clone returns a deep copy so callers never share pointer fields.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Motion: s.Motion}
	out.PPM = cloneFloat(s.PPM)
	out.Temperature = cloneFloat(s.Temperature)
	out.Humidity = cloneFloat(s.Humidity)
	if s.AirQuality != nil {
		q := *s.AirQuality
		out.AirQuality = &q
	}
	if s.Timestamp != nil {
		ts := *s.Timestamp
		out.Timestamp = &ts
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// BucketStats holds the summary statistics shared by daily and monthly rollups.
// Nullable fields are nil when the bucket has no non-null values for them.
type BucketStats struct {
	AvgPPM         float64  `json:"avgPpm"`
	MaxPPM         float64  `json:"maxPpm"`
	MinPPM         float64  `json:"minPpm"`
	AvgTemperature *float64 `json:"avgTemperature"`
	MaxTemperature *float64 `json:"maxTemperature"`
	MinTemperature *float64 `json:"minTemperature"`
	AvgHumidity    *float64 `json:"avgHumidity"`
	MotionCount    int      `json:"motionCount"`
	TotalReadings  int      `json:"totalReadings"`
	AirQuality     Quality  `json:"airQuality"`
}

// DailyStat is the rollup of one calendar day.
type DailyStat struct {
	Date          time.Time `json:"date"`
	DateFormatted string    `json:"dateFormatted"`
	BucketStats
}

// MonthlyStat is the rollup of one calendar month.
type MonthlyStat struct {
	Month         time.Time `json:"month"`
	MonthName     string    `json:"monthName"`
	DateFormatted string    `json:"dateFormatted"`
	DangerousDays int       `json:"dangerousDays"`
	BucketStats
}

// StoreStatus is the result of the last store reachability probe.
type StoreStatus struct {
	OK            bool      `json:"ok"`
	Message       string    `json:"message"`
	Driver        string    `json:"driver,omitempty"`
	ReadingsCount int64     `json:"readingsCount"`
	CheckedAt     time.Time `json:"checkedAt"`
}
