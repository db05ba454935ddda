package weather

import "time"

// Reading carries the raw values an adapter extracted for one instant,
// before range checks and unit derivation.
type Reading struct {
	Time          time.Time
	Temperature   float64
	WeatherCode   int
	WindKph       float64
	Humidity      float64
	Precipitation float64
	Rain          float64
	FeelsLike     *float64
	Condition     string
}
