package models

import "time"

// WeatherData is the display record of a Weather Pro lookup.
type WeatherData struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature int       `json:"temperature"`
	FeelsLike   int       `json:"feelsLike"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`  // km/h
	Visibility  float64   `json:"visibility"` // km
	Timestamp   time.Time `json:"timestamp"`
}

// SearchLog is one entry of the rolling weather search log.
type SearchLog struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}
