package domain

import "time"

// WeatherPoint is one hour of forecast.
type WeatherPoint struct {
	Time                     time.Time `json:"time"`
	TemperatureC             float64   `json:"temperature"`
	PrecipitationProbability float64   `json:"precipitation"`
	WindSpeedKmh             float64   `json:"windSpeed"`
	Code                     int       `json:"weatherCode"`
	Description              string    `json:"weatherDescription"`
}

// CurrentWeather is the provider's observation for now.
type CurrentWeather struct {
	TemperatureC float64 `json:"temperature"`
	WindSpeedKmh float64 `json:"windSpeed"`
	Code         int     `json:"weatherCode"`
	Description  string  `json:"weatherDescription"`
}

// Forecast is the hourly outlook for a coordinate.
type Forecast struct {
	Coordinate Coordinate     `json:"coordinate"`
	Current    CurrentWeather `json:"current"`
	Hourly     []WeatherPoint `json:"hourly"`
}

// ForecastSummary holds the temperature statistics shown above the chart.
type ForecastSummary struct {
	AverageTempC float64 `json:"averageTemp"`
	MaxTempC     float64 `json:"maxTemp"`
	MinTempC     float64 `json:"minTemp"`
}

// SummarizeForecast computes the temperature statistics. Empty forecasts yield zeros.
func SummarizeForecast(f Forecast) ForecastSummary {
	if len(f.Hourly) == 0 {
		return ForecastSummary{}
	}

	var sum float64
	min := f.Hourly[0].TemperatureC
	max := f.Hourly[0].TemperatureC

	for _, p := range f.Hourly {
		sum += p.TemperatureC
		if p.TemperatureC < min {
			min = p.TemperatureC
		}
		if p.TemperatureC > max {
			max = p.TemperatureC
		}
	}

	return ForecastSummary{
		AverageTempC: sum / float64(len(f.Hourly)),
		MaxTempC:     max,
		MinTempC:     min,
	}
}

var weatherDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Drizzle: Light",
	53: "Drizzle: Moderate",
	55: "Drizzle: Dense",
	56: "Freezing drizzle: Light",
	57: "Freezing drizzle: Dense",
	61: "Rain: Slight",
	63: "Rain: Moderate",
	65: "Rain: Heavy",
	66: "Freezing rain: Light",
	67: "Freezing rain: Heavy",
	71: "Snow fall: Slight",
	73: "Snow fall: Moderate",
	75: "Snow fall: Heavy",
	77: "Snow grains",
	80: "Rain showers: Slight",
	81: "Rain showers: Moderate",
	82: "Rain showers: Violent",
	85: "Snow showers: Slight",
	86: "Snow showers: Heavy",
	95: "Thunderstorm: Slight or moderate",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeWeatherCode maps a WMO weather interpretation code to text.
func DescribeWeatherCode(code int) string {
	if d, ok := weatherDescriptions[code]; ok {
		return d
	}
	return "Unknown"
}
