package weatherfeed

import "encoding/json"

// ApiResponse models the top-level structure of the upstream weather API's response.
type ApiResponse struct {
	Code int         `json:"code"`
	Data Observation `json:"data"`
}

// Observation is a single upstream reading for one location.
type Observation struct {
	ObservedAt    string          `json:"observedAt"`
	Temperature   *float64        `json:"temperature"`
	Humidity      *float64        `json:"humidity"`
	Precipitation *float64        `json:"precipitation"`
	WindSpeed     *float64        `json:"windSpeed"`
	Conditions    *string         `json:"conditions"`
	Forecast      json.RawMessage `json:"forecast"`
}
