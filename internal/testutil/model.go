package testutil

// SampleModel is a complete flowsheet definition used across importer,
// git-sync, and API tests.
const SampleModel = `
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
