package flowsheet

import "strings"

// DefaultName is the model every install can run without registering
// anything.
const DefaultName = "steam-reforming-base"

// Default returns the built-in steam reforming model: the equilib engine
// with its canonical variable tree bound one-to-one.
func Default() *Definition {
	fractions := make(map[string]string, len(Fractions))
	for _, f := range Fractions {
		fractions[f] = "feed.composition." + f
	}
	setpoints := map[string]string{
		"hts_temperature_c": "shift.hts.temperature_c",
		"lts_temperature_c": "shift.lts.temperature_c",
		"psa_pressure_bar":  "psa.pressure_bar",
	}
	product := make(map[string]string, len(ProductFields))
	for _, f := range ProductFields {
		product[f] = "product." + f
	}
	energy := make(map[string]string, len(EnergyFields))
	for _, f := range EnergyFields {
		energy[f] = "energy." + f
	}
	streams := make([]Stream, 0, len(Locations))
	for _, loc := range Locations {
		streams = append(streams, Stream{
			Location: loc,
			Path:     "streams." + strings.ToLower(loc),
		})
	}

	return &Definition{
		APIVersion: APIVersionV1,
		Kind:       KindModel,
		Metadata: Metadata{
			Name:   DefaultName,
			Labels: map[string]string{"builtin": "true"},
		},
		Engine:     EngineEquilib,
		Version:    DefaultVersion,
		Components: append([]string(nil), Components...),
		Inputs: Inputs{
			Fractions:   fractions,
			FeedRate:    "feed.rate_kgh",
			SteamRate:   "steam.rate_kgh",
			Temperature: "reformer.temperature_c",
			Pressure:    "reformer.pressure_bar",
			Setpoints:   setpoints,
		},
		Outputs: Outputs{
			Status:      "solver.status",
			Iterations:  "solver.iterations",
			MassError:   "solver.mass_error_percent",
			EnergyError: "solver.energy_error_percent",
			Product:     product,
			Energy:      energy,
		},
		Streams: streams,
	}
}
