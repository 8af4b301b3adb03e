package model

type Location struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type ForecastDay struct {
	Date        string `json:"date"`
	TempF       int    `json:"temp_f"`
	Humidity    int    `json:"humidity"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	WindMph     int    `json:"wind_mph"`
}

type Forecast struct {
	Location Location      `json:"location"`
	Days     []ForecastDay `json:"days"`
}
