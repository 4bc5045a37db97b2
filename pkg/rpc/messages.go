package rpc

// Field is a paddy field.
type Field struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Coordinate string  `json:"coordinate"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

type ListFieldsRequest struct{}

type ListFieldsResponse struct {
	Fields []*Field `json:"fields"`
}

type GetDashboardRequest struct {
	FieldID        int64  `json:"fieldId"`
	SelectedDevice string `json:"selectedDevice,omitempty"`
	Panel          string `json:"panel,omitempty"` // devices | weather | pest
}

// SensorCard is one reading as rendered on the dashboard.
type SensorCard struct {
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Display   string `json:"display"`
	Band      string `json:"band,omitempty"`
	Advisory  string `json:"advisory,omitempty"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

type Device struct {
	MachineID string        `json:"machineId"`
	Name      string        `json:"name,omitempty"`
	HasData   bool          `json:"hasData"`
	Cards     []*SensorCard `json:"cards"`
}

type PestRisk struct {
	Rodent      bool     `json:"rodent"`
	Planthopper bool     `json:"planthopper"`
	Messages    []string `json:"messages"`
}

type GetDashboardResponse struct {
	FieldID        int64     `json:"fieldId"`
	SelectedDevice string    `json:"selectedDevice,omitempty"`
	Panel          string    `json:"panel"`
	Devices        []*Device `json:"devices"`
	PestRisk       *PestRisk `json:"pestRisk"`
	FetchedAt      int64     `json:"fetchedAt"`
}

type GetPestRiskRequest struct {
	FieldID int64 `json:"fieldId"`
}

type GetPestRiskResponse struct {
	FieldID  int64     `json:"fieldId"`
	PestRisk *PestRisk `json:"pestRisk"`
}

type GetWeatherRequest struct {
	FieldID int64 `json:"fieldId"`
}

type WeatherPoint struct {
	Time                     int64   `json:"time,omitempty"`
	TemperatureC             float64 `json:"temperature"`
	PrecipitationProbability float64 `json:"precipitation"`
	WindSpeedKmh             float64 `json:"windSpeed"`
	WeatherCode              int32   `json:"weatherCode"`
	Description              string  `json:"weatherDescription"`
}

type GetWeatherResponse struct {
	FieldID      int64           `json:"fieldId"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Current      *WeatherPoint   `json:"current"`
	Hourly       []*WeatherPoint `json:"hourly"`
	AverageTempC float64         `json:"averageTemp"`
	MinTempC     float64         `json:"minTemp"`
	MaxTempC     float64         `json:"maxTemp"`
}

// Reading is a logged sensor reading.
type Reading struct {
	ID        int64  `json:"id"`
	MachineID string `json:"machineId"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

type GetHistoryRequest struct {
	MachineID string `json:"machineId"`
	StartTime int64  `json:"startTime"` // unix seconds, inclusive
	EndTime   int64  `json:"endTime"`   // unix seconds, exclusive
}

type GetHistoryResponse struct {
	Readings []*Reading `json:"readings"`
	Count    int32      `json:"count"`
	Average  float64    `json:"average"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
}

type RecordReadingRequest struct {
	MachineID string `json:"machineId"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix seconds, now when zero
}

type RecordReadingResponse struct {
	Reading *Reading `json:"reading"`
}

type ClassifyMoistureRequest struct {
	Value string `json:"value"`
}

type ClassifyMoistureResponse struct {
	Band            string `json:"band"`
	Advisory        string `json:"advisory"`
	NeedsIrrigation bool   `json:"needsIrrigation"`
}
