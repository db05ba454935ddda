package weather

// Scheme identifies the code space a provider reports conditions in.
type Scheme int

const (
	// SchemeWMO is the WMO 4677 code space used by Open-Meteo. It is the canonical space.
	SchemeWMO Scheme = iota
	// SchemeWeatherAPI is WeatherAPI.com's proprietary 1000-1282 range.
	SchemeWeatherAPI
)

// UnknownCode is returned for canonical codes that have no rendering.
const UnknownCode = -1

// Condition is the rendering of a canonical weather code.
type Condition struct {
	Code        int    `json:"code"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var unknownCondition = Condition{Code: UnknownCode, Icon: "❓", Description: "Unknown"}

var wmoConditions = map[int]Condition{
	0:  {Icon: "☀️", Description: "Clear sky"},
	1:  {Icon: "🌤️", Description: "Mainly clear"},
	2:  {Icon: "⛅", Description: "Partly cloudy"},
	3:  {Icon: "☁️", Description: "Overcast"},
	45: {Icon: "🌫️", Description: "Fog"},
	48: {Icon: "🌫️❄️", Description: "Depositing rime fog"},
	51: {Icon: "🌧️", Description: "Light drizzle"},
	53: {Icon: "🌧️", Description: "Moderate drizzle"},
	55: {Icon: "🌧️", Description: "Dense drizzle"},
	56: {Icon: "🌧️❄️", Description: "Light freezing drizzle"},
	57: {Icon: "🌧️❄️", Description: "Dense freezing drizzle"},
	61: {Icon: "🌦️", Description: "Slight rain"},
	63: {Icon: "🌧️", Description: "Moderate rain"},
	65: {Icon: "🌧️💧", Description: "Heavy rain"},
	66: {Icon: "🌨️", Description: "Light freezing rain"},
	67: {Icon: "🌨️❄️", Description: "Heavy freezing rain"},
	71: {Icon: "🌨️", Description: "Slight snowfall"},
	73: {Icon: "❄️", Description: "Moderate snowfall"},
	75: {Icon: "❄️❄️", Description: "Heavy snowfall"},
	77: {Icon: "❄️", Description: "Snow grains"},
	80: {Icon: "🌦️", Description: "Slight rain showers"},
	81: {Icon: "🌧️", Description: "Moderate rain showers"},
	82: {Icon: "🌧️💧", Description: "Violent rain showers"},
	85: {Icon: "🌨️", Description: "Slight snow showers"},
	86: {Icon: "❄️", Description: "Heavy snow showers"},
	95: {Icon: "⛈️", Description: "Thunderstorm"},
	96: {Icon: "⛈️🌨️", Description: "Thunderstorm with slight hail"},
	99: {Icon: "⛈️❄️", Description: "Thunderstorm with heavy hail"},
}

// weatherAPICodes maps WeatherAPI.com condition codes onto WMO codes.
var weatherAPICodes = map[int]int{
	1000: 0,  // sunny / clear
	1003: 2,  // partly cloudy
	1006: 3,  // cloudy
	1009: 3,  // overcast
	1030: 45, // mist
	1063: 61, // patchy rain possible
	1066: 71, // patchy snow possible
	1069: 66, // patchy sleet possible
	1072: 66, // patchy freezing drizzle possible
	1087: 95, // thundery outbreaks possible
	1114: 75, // blowing snow
	1117: 86, // blizzard
	1135: 45, // fog
	1147: 45, // freezing fog
	1150: 51, // patchy light drizzle
	1153: 53, // light drizzle
	1168: 66, // freezing drizzle
	1171: 67, // heavy freezing drizzle
	1180: 61, // patchy light rain
	1183: 63, // light rain
	1186: 63, // moderate rain at times
	1189: 63, // moderate rain
	1192: 65, // heavy rain at times
	1195: 65, // heavy rain
	1201: 67, // moderate or heavy freezing rain
	1204: 66, // light sleet
	1207: 67, // moderate or heavy sleet
	1210: 71, // patchy light snow
	1213: 73, // light snow
	1216: 73, // patchy moderate snow
	1219: 73, // moderate snow
	1222: 75, // patchy heavy snow
	1225: 75, // heavy snow
	1237: 77, // ice pellets
	1240: 80, // light rain shower
	1243: 81, // moderate or heavy rain shower
	1246: 82, // torrential rain shower
	1249: 85, // light sleet showers
	1252: 86, // moderate or heavy sleet showers
	1255: 85, // light snow showers
	1258: 86, // moderate or heavy snow showers
	1261: 77, // light showers of ice pellets
	1264: 77, // moderate or heavy showers of ice pellets
	1273: 95, // patchy light rain with thunder
	1276: 95, // moderate or heavy rain with thunder
	1279: 96, // patchy light snow with thunder
	1282: 99, // moderate or heavy snow with thunder
}

// visualCrossingIcons maps Visual Crossing icon set names onto WMO codes.
var visualCrossingIcons = map[string]int{
	"clear-day":           0,
	"clear-night":         0,
	"partly-cloudy-day":   2,
	"partly-cloudy-night": 2,
	"cloudy":              3,
	"fog":                 45,
	"wind":                0,
	"rain":                61,
	"sleet":               66,
	"snow":                71,
	"hail":                77,
	"thunderstorm":        95,
}

// Describe renders a canonical code. Codes without a documented rendering
// resolve to the unknown sentinel.
func Describe(code int) Condition {
	c, ok := wmoConditions[code]
	if !ok {
		return unknownCondition
	}
	c.Code = code
	return c
}

// Known reports whether the canonical code has a rendering.
func Known(code int) bool {
	_, ok := wmoConditions[code]
	return ok
}

// CanonicalCode maps a provider code into the canonical space. Foreign codes
// missing from their table resolve to 0 (clear), a known approximation.
func CanonicalCode(code int, scheme Scheme) int {
	switch scheme {
	case SchemeWeatherAPI:
		return weatherAPICodes[code]
	default:
		return code
	}
}

// Translate maps a provider code into the canonical space and renders it.
func Translate(code int, scheme Scheme) Condition {
	return Describe(CanonicalCode(code, scheme))
}

// IconCode maps a Visual Crossing icon name into the canonical space.
func IconCode(icon string) int {
	return visualCrossingIcons[icon]
}

// TranslateIcon maps a Visual Crossing icon name into the canonical space and renders it.
func TranslateIcon(icon string) Condition {
	return Describe(IconCode(icon))
}

// Background returns the theme bucket a front end uses for its backdrop.
func Background(code int) string {
	switch {
	case code == 0:
		return "sunny"
	case code == 1 || code == 2:
		return "partly-cloudy"
	case code == 3:
		return "cloudy"
	case code >= 45 && code <= 48:
		return "foggy"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "rainy"
	case code >= 71 && code <= 77, code >= 85 && code <= 86:
		return "snowy"
	case code >= 95 && code <= 99:
		return "stormy"
	default:
		return "default"
	}
}
