package config

import (
	"time"

	"github.com/wardstats/wardstats/internal/model"
)

const (
	homepageURL     = "https://www.england.nhs.uk/statistics/statistical-work-areas/virtual-ward-capacity-and-occupancy-statistics/"
	gpPopulationURL = "https://digital.nhs.uk/data-and-information/publications/statistical/patients-registered-at-a-gp-practice/april-2023"
)

// Column labels as published in the monthly workbooks, after footnotes are stripped.
const (
	labelCapacity     = "Virtual Ward Capacity"
	labelCapacityRate = "Virtual Ward Capacity per 100,000 GP registered population aged 16 years and over"
	labelPopulation   = "GP Registered Population (Aged 16+)"
	labelPatients     = "Number of patients on a Virtual Ward"
	labelOccupancy    = "Virtual Ward Occupancy"
)

// Default returns the built-in configuration. Values from config.yml are merged
// over it.
func Default() Config {
	return Config{
		LogFormat:       "text",
		LogLevel:        "info",
		Addr:            ":8050",
		DataDir:         "data",
		DataFilename:    "virtual_ward_statistics.csv",
		MasterParquet:   "virtual_ward_statistics.parquet",
		Header:          "Virtual Ward Capacity and Occupancy in England",
		HomepageURL:     homepageURL,
		InfoURL:         "https://www.england.nhs.uk/virtual-wards/",
		GPPopulationURL: gpPopulationURL,
		ColumnNames: map[string]string{
			"Region":          model.ColRegion,
			"ICB Code":        model.ColICBCode,
			"ICB Name":        model.ColICBName,
			labelCapacity:     model.ColCapacity,
			labelCapacityRate: model.ColCapacityPerPopulation,
			labelPopulation:   model.ColPopulation,
			labelPatients:     model.ColPatients,
			labelOccupancy:    model.ColOccupancy,
		},
		DropdownOptions: []MetricOption{
			{Value: model.ColCapacityPerPopulation, Label: "Capacity per 100,000 GP registered population (aged 16+)"},
			{Value: model.ColCapacity, Label: "Capacity (number of virtual ward 'beds')"},
			{Value: model.ColPatients, Label: "Patients on a virtual ward (number)"},
			{Value: model.ColOccupancy, Label: "Occupancy (% of capacity)"},
		},
		Formatters: map[string]string{
			model.ColCapacity:              ",.0f",
			model.ColCapacityPerPopulation: ".1f",
			model.ColPopulation:            ",.0f",
			model.ColPatients:              ",.0f",
			model.ColOccupancy:             ".0%",
		},
		NHSColours: map[string]string{
			"BLUE":       "#005EB8",
			"DARK_BLUE":  "#003087",
			"LIGHT_BLUE": "#41B6E6",
			"WHITE":      "#FFFFFF",
		},
		MapCentre:     Coordinate{Lat: 52.8, Lon: -1.6},
		DefaultRegion: "QT6",
		DefaultMetric: model.ColCapacityPerPopulation,
		Boundaries: BoundaryConfig{
			GeoJSON:     "icb_boundaries.geojson",
			Lookup:      "icb_code_lookup.csv",
			FeatureKey:  "ICB22CD",
			LookupLong:  "ICB22CD",
			LookupShort: "ICB22CDH",
			LookupName:  "ICB22NM",
		},
		HTTP: HTTPConfig{
			UserAgent: "wardstats/1.0",
			Timeout:   60 * time.Second,
		},
	}
}
