package airquality

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"

	dayLabelLayout   = "Monday, 2 January 2006"
	monthLabelLayout = "January 2006"
)

// series accumulates min/max/sum over the non-null values of one field.
type series struct {
	n        int
	sum      float64
	min, max float64
}

func (s *series) add(v float64) {
	if s.n == 0 || v < s.min {
		s.min = v
	}
	if s.n == 0 || v > s.max {
		s.max = v
	}
	s.sum += v
	s.n++
}

func (s *series) addOptional(v *float64) {
	if v != nil {
		s.add(*v)
	}
}

func (s *series) avg() *float64 {
	if s.n == 0 {
		return nil
	}
	return round1Ptr(s.sum / float64(s.n))
}

func (s *series) minimum() *float64 {
	if s.n == 0 {
		return nil
	}
	return round1Ptr(s.min)
}

func (s *series) maximum() *float64 {
	if s.n == 0 {
		return nil
	}
	return round1Ptr(s.max)
}

// bucket groups readings sharing one calendar key.
type bucket struct {
	start       time.Time
	ppm         series
	temperature series
	humidity    series
	motion      int
	total       int
}

func (b *bucket) add(r Reading) {
	b.ppm.add(r.PPM)
	b.temperature.addOptional(r.Temperature)
	b.humidity.addOptional(r.Humidity)
	if r.Motion {
		b.motion++
	}
	b.total++
}

func (b *bucket) stats() BucketStats {
	// ppm is required on every reading, so a non-empty bucket always has these.
	avgPPM := derefOrZero(b.ppm.avg())
	return BucketStats{
		AvgPPM:         avgPPM,
		MaxPPM:         derefOrZero(b.ppm.maximum()),
		MinPPM:         derefOrZero(b.ppm.minimum()),
		AvgTemperature: b.temperature.avg(),
		MaxTemperature: b.temperature.maximum(),
		MinTemperature: b.temperature.minimum(),
		AvgHumidity:    b.humidity.avg(),
		MotionCount:    b.motion,
		TotalReadings:  b.total,
		AirQuality:     ClassifyValue(avgPPM),
	}
}

// groupBy buckets readings by the calendar key computed in loc and returns
// the keys in ascending order.
func groupBy(readings []Reading, loc *time.Location, layout string, startOf func(time.Time) time.Time) ([]string, map[string]*bucket) {
	buckets := make(map[string]*bucket)
	for _, r := range readings {
		local := r.Timestamp.In(loc)
		k := local.Format(layout)

		b, ok := buckets[k]
		if !ok {
			b = &bucket{start: startOf(local)}
			buckets[k] = b
		}
		b.add(r)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DailyRollup groups readings by calendar day in loc, ascending by date.
func DailyRollup(readings []Reading, loc *time.Location) []DailyStat {
	if loc == nil {
		loc = time.UTC
	}

	keys, buckets := groupBy(readings, loc, dayKeyLayout, startOfDay)
	out := make([]DailyStat, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, DailyStat{
			Date:          b.start,
			DateFormatted: b.start.Format(dayLabelLayout),
			BucketStats:   b.stats(),
		})
	}
	return out
}

// MonthlyRollup groups readings by calendar month in loc, ascending by month.
// DangerousDays counts the month's days whose own average ppm is Dangerous.
func MonthlyRollup(readings []Reading, loc *time.Location) []MonthlyStat {
	if loc == nil {
		loc = time.UTC
	}

	dangerous := make(map[string]int)
	for _, day := range DailyRollup(readings, loc) {
		if day.AvgPPM >= ThresholdDangerous {
			dangerous[day.Date.Format(monthKeyLayout)]++
		}
	}

	keys, buckets := groupBy(readings, loc, monthKeyLayout, startOfMonth)
	out := make([]MonthlyStat, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		label := b.start.Format(monthLabelLayout)
		out = append(out, MonthlyStat{
			Month:         b.start,
			MonthName:     label,
			DateFormatted: label,
			DangerousDays: dangerous[k],
			BucketStats:   b.stats(),
		})
	}
	return out
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

func round1Ptr(v float64) *float64 {
	r := round1(v)
	return &r
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
