package weather

import "math"

const kphToMpsFactor = 0.27778

// KphToMps converts km/h to m/s.
func KphToMps(v float64) float64 {
	return v * kphToMpsFactor
}

// FeelsLike approximates apparent temperature with the wind chill formula.
// t is air temperature in °C and v is wind speed in km/h. The formula is
// applied for every temperature band.
func FeelsLike(t, v float64) float64 {
	if v < 0 {
		v = 0
	}
	vp := math.Pow(v, 0.16)
	return 13.12 + 0.6215*t - 11.37*vp + 0.3965*t*vp
}

func clampHumidity(h float64) float64 {
	return math.Max(0, math.Min(100, h))
}

func clampNonNegative(v float64) float64 {
	return math.Max(0, v)
}

// NewSnapshot builds a snapshot from raw provider readings, deriving the m/s
// wind speed and clamping humidity and wind into their valid ranges.
func NewSnapshot(r Reading) WeatherSnapshot {
	wind := clampNonNegative(r.WindKph)
	return WeatherSnapshot{
		Time:          r.Time,
		Temperature:   r.Temperature,
		WeatherCode:   r.WeatherCode,
		WindSpeed:     wind,
		WindSpeedMps:  KphToMps(wind),
		Humidity:      clampHumidity(r.Humidity),
		Precipitation: r.Precipitation,
		Rain:          r.Rain,
		FeelsLike:     r.FeelsLike,
		Condition:     r.Condition,
	}
}
