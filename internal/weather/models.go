package weather

import (
	"fmt"
	"time"
)

// Model identifies one of the numerical forecast models requested from Open-Meteo.
type Model string

const (
	ModelECMWF Model = "ecmwf_ifs"
	ModelGFS   Model = "gfs_seamless"
	ModelICON  Model = "icon_seamless"
)

// PrimaryModel is the model whose raw values are used whenever a quantity is not averaged.
const PrimaryModel = ModelECMWF

// Models lists the forecast models in priority order, primary first.
var Models = []Model{ModelECMWF, ModelGFS, ModelICON}

type Coordinates struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

func NewCoordinates(lat, lon float64, name string) (Coordinates, error) {
	c := Coordinates{Lat: lat, Lon: lon, Name: name}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Key returns a stable string for logs and span attributes.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// WeatherSnapshot is the weather at a single instant.
type WeatherSnapshot struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	WeatherCode   int       `json:"weather_code"`
	WindSpeed     float64   `json:"wind_speed"`
	WindSpeedMps  float64   `json:"wind_speed_mps"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	Rain          float64   `json:"rain"`
	FeelsLike     *float64  `json:"feels_like,omitempty"`
	Condition     string    `json:"condition,omitempty"`
}

// ModelTemperatures holds one temperature per forecast model. A nil field means
// the model did not report a value.
type ModelTemperatures struct {
	ECMWF *float64 `json:"ecmwf"`
	GFS   *float64 `json:"gfs"`
	ICON  *float64 `json:"icon"`
}

// Values returns the per-model values in Models order.
func (m ModelTemperatures) Values() []*float64 {
	return []*float64{m.ECMWF, m.GFS, m.ICON}
}

// ModelPrecipitation holds one daily precipitation sum per forecast model.
type ModelPrecipitation struct {
	ECMWF *float64 `json:"ecmwf"`
	GFS   *float64 `json:"gfs"`
	ICON  *float64 `json:"icon"`
}

type HourlyForecast struct {
	WeatherSnapshot
	ModelTemperatures ModelTemperatures `json:"model_temperatures"`
}

type DailyForecast struct {
	Date               string              `json:"date"`
	WeatherCode        int                 `json:"weather_code"`
	TempMax            float64             `json:"temp_max"`
	TempMin            float64             `json:"temp_min"`
	PrecipitationSum   float64             `json:"precipitation_sum"`
	ModelPrecipitation *ModelPrecipitation `json:"model_precipitation,omitempty"`
	Hourly             []HourlyForecast    `json:"hourly,omitempty"`
}

// NormalizedWeather is the provider-independent result of one adapter call.
type NormalizedWeather struct {
	Provider          string            `json:"provider"`
	Current           WeatherSnapshot   `json:"current"`
	ModelTemperatures ModelTemperatures `json:"model_temperatures"`
	Daily             []DailyForecast   `json:"daily"`
	Timezone          string            `json:"timezone"`
	LocationName      string            `json:"location_name"`
}

// QualityWarnings reports upstream data that breaks expectations without being
// an error, such as a day whose maximum is below its minimum.
func (n *NormalizedWeather) QualityWarnings() []string {
	var warnings []string
	for _, d := range n.Daily {
		if d.TempMax < d.TempMin {
			warnings = append(warnings, fmt.Sprintf("%s: temp_max %.1f below temp_min %.1f", d.Date, d.TempMax, d.TempMin))
		}
	}
	return warnings
}
