package models

import "time"

// Station is one air quality monitoring station reading.
type Station struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AQI        float64   `json:"aqi"`
	ObservedAt time.Time `json:"observedAt"`
}

// StationList is the body of GET /v1/stations.
type StationList struct {
	Stations  []Station `json:"stations"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetchedAt"`
}
