package flowsheet

import "testing"

var example1 = `
$schema: https://reformlab.io/schemas/model.v1.json
apiVersion: v1
kind: Model
metadata:
  name: steam-reforming-pilot
  labels:
    plant: pilot-a
engine: equilib
version: V8.8
inputs:
  fractions:
    aromatics: feed.composition.aromatics
    acids: feed.composition.acids
    alcohols: feed.composition.alcohols
    furans: feed.composition.furans
    phenols: feed.composition.phenols
    aldehyde_ketone: feed.composition.aldehyde_ketone
  feedRate: feed.rate_kgh
  steamRate: steam.rate_kgh
  temperature: reformer.temperature_c
  pressure: reformer.pressure_bar
  setpoints:
    hts_temperature_c: shift.hts.temperature_c
    lts_temperature_c: shift.lts.temperature_c
    psa_pressure_bar: psa.pressure_bar
outputs:
  status: solver.status
  iterations: solver.iterations
  massError: solver.mass_error_percent
  energyError: solver.energy_error_percent
  product:
    h2_yield_kg: product.h2_yield_kg
    h2_purity_percent: product.h2_purity_percent
    h2_flowrate_kgh: product.h2_flowrate_kgh
    h2_flowrate_nm3h: product.h2_flowrate_nm3h
    h2_co_ratio: product.h2_co_ratio
    h2_co2_ratio: product.h2_co2_ratio
    co2_production_kg: product.co2_production_kg
    co2_purity_percent: product.co2_purity_percent
    ch4_slip_percent: product.ch4_slip_percent
    co_slip_ppm: product.co_slip_ppm
    carbon_conversion_percent: product.carbon_conversion_percent
    h2_recovery_percent: product.h2_recovery_percent
    energy_efficiency_percent: product.energy_efficiency_percent
    specific_energy_mj_per_kg: product.specific_energy_mj_per_kg
    tailgas_flowrate_kgh: product.tailgas_flowrate_kgh
    tailgas_hhv_mj_per_kg: product.tailgas_hhv_mj_per_kg
  energy:
    biooil_hhv_mj: energy.biooil_hhv_mj
    preheater_heat_mj: energy.preheater_heat_mj
    reformer_heat_mj: energy.reformer_heat_mj
    total_input_mj: energy.total_input_mj
    h2_product_hhv_mj: energy.h2_product_hhv_mj
    tailgas_energy_mj: energy.tailgas_energy_mj
    heat_recovered_mj: energy.heat_recovered_mj
    heat_loss_mj: energy.heat_loss_mj
    thermal_efficiency_percent: energy.thermal_efficiency_percent
    carbon_efficiency_percent: energy.carbon_efficiency_percent
streams:
  - location: Reformer_Out
    path: streams.reformer_out
  - location: HTS_Out
    path: streams.hts_out
  - location: LTS_Out
    path: streams.lts_out
  - location: PSA_In
    path: streams.psa_in
`

func TestParseValidDefinition(t *testing.T) {
	def, err := Parse([]byte(example1))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if def.Kind != KindModel {
		t.Fatalf("unexpected kind: %s", def.Kind)
	}
	if def.Engine != EngineEquilib {
		t.Fatalf("unexpected engine: %s", def.Engine)
	}
	if len(def.Components) != len(Components) {
		t.Fatalf("default components not applied: %v", def.Components)
	}
	if len(def.Streams) != len(Locations) {
		t.Fatalf("streams not parsed: %v", def.Streams)
	}

	stream, ok := def.Stream("HTS_Out")
	if !ok {
		t.Fatal("HTS_Out stream not found")
	}
	if got := stream.Component("H2"); got != "streams.hts_out.h2" {
		t.Fatalf("unexpected component path: %s", got)
	}
	if got := stream.Metric("temperature_c"); got != "streams.hts_out.temperature_c" {
		t.Fatalf("unexpected metric path: %s", got)
	}
}

func TestDefaultValidates(t *testing.T) {
	def := Default()
	if err := def.Validate(); err != nil {
		t.Fatalf("builtin model is invalid: %v", err)
	}
	if def.Metadata.Name != DefaultName {
		t.Fatalf("unexpected name: %s", def.Metadata.Name)
	}
	if def.Version != DefaultVersion {
		t.Fatalf("unexpected version: %s", def.Version)
	}
	for _, field := range ProductFields {
		if def.Outputs.Product[field] == "" {
			t.Fatalf("product field %s unbound", field)
		}
	}
}

func TestParseInvalidDefinitions(t *testing.T) {
	cases := map[string]func(*Definition){
		"bad version":       func(d *Definition) { d.APIVersion = "v2" },
		"bad kind":          func(d *Definition) { d.Kind = "Job" },
		"missing name":      func(d *Definition) { d.Metadata.Name = "  " },
		"unknown engine":    func(d *Definition) { d.Engine = "hysys" },
		"missing fraction":  func(d *Definition) { delete(d.Inputs.Fractions, "phenols") },
		"unknown fraction":  func(d *Definition) { d.Inputs.Fractions["tars"] = "feed.composition.tars" },
		"bad path":          func(d *Definition) { d.Inputs.FeedRate = "Feed\\Rate" },
		"single segment":    func(d *Definition) { d.Inputs.SteamRate = "steam" },
		"missing setpoint":  func(d *Definition) { delete(d.Inputs.Setpoints, "psa_pressure_bar") },
		"missing error":     func(d *Definition) { d.Outputs.MassError = "" },
		"missing product":   func(d *Definition) { delete(d.Outputs.Product, "h2_yield_kg") },
		"missing energy":    func(d *Definition) { delete(d.Outputs.Energy, "heat_loss_mj") },
		"duplicate stream":  func(d *Definition) { d.Streams[1].Location = d.Streams[0].Location },
		"unknown stream":    func(d *Definition) { d.Streams[3].Location = "Condenser_Out" },
		"missing stream":    func(d *Definition) { d.Streams = d.Streams[:3] },
		"duplicate species": func(d *Definition) { d.Components = []string{"H2", "H2"} },
	}

	for name, mutate := range cases {
		def := Default()
		mutate(def)
		if err := def.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
