package domain

// Weather categories returned by ClassifyWeather.
const (
	WeatherClear        = "Clear"
	WeatherCloudy       = "Cloudy"
	WeatherFoggy        = "Foggy"
	WeatherRainy        = "Rainy"
	WeatherSnowy        = "Snowy"
	WeatherShowers      = "Showers"
	WeatherThunderstorm = "Thunderstorm"
	WeatherUnknown      = "Unknown"
)

// ClassifyWeather maps a WMO weather code to a coarse category.
// Breakpoints are inclusive.
func ClassifyWeather(code int) string {
	switch {
	case code == 0:
		return WeatherClear
	case code >= 1 && code <= 3:
		return WeatherCloudy
	case code >= 45 && code <= 48:
		return WeatherFoggy
	case code >= 51 && code <= 67:
		return WeatherRainy
	case code >= 71 && code <= 77:
		return WeatherSnowy
	case code >= 80 && code <= 82:
		return WeatherShowers
	case code >= 95:
		return WeatherThunderstorm
	default:
		return WeatherUnknown
	}
}

// NewWeather builds a Weather value with its description derived from code.
func NewWeather(temp float64, code int) Weather {
	return Weather{Temp: temp, Code: code, Description: ClassifyWeather(code)}
}
