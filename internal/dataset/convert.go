package dataset

import "math"

// Conversion ratios used to derive the reported metrics from energy.
const (
	// MMBtuToKWh converts source energy readings to kilowatt-hours.
	MMBtuToKWh = 293.071

	waterGallonsPerKWh = 0.5
	kwhPerWasteLb      = 30.0
	co2TonsPerKWh      = 0.0004
)

// KWhFromMMBtu converts an MMBtu reading to whole kilowatt-hours.
func KWhFromMMBtu(mmbtu float64) float64 {
	return math.Trunc(mmbtu * MMBtuToKWh)
}

// WaterFromEnergy estimates water consumption in gallons.
func WaterFromEnergy(kwh float64) float64 {
	return math.Trunc(kwh * waterGallonsPerKWh)
}

// WasteFromEnergy estimates diverted waste in pounds.
func WasteFromEnergy(kwh float64) float64 {
	return math.Trunc(kwh / kwhPerWasteLb)
}

// CO2FromEnergy estimates CO2 emissions in tons, rounded to one decimal.
func CO2FromEnergy(kwh float64) float64 {
	return math.Round(kwh*co2TonsPerKWh*10) / 10
}

// derive fills in the energy-derived metrics of r from r.EnergyKWh.
func derive(r *Record) {
	r.WaterGallons = WaterFromEnergy(r.EnergyKWh)
	r.WasteLbs = WasteFromEnergy(r.EnergyKWh)
	r.CO2Tons = CO2FromEnergy(r.EnergyKWh)
}
