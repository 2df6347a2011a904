package db

type view struct {
	name  string
	query string
}

// The views are the read-only hand-off surface for the downstream dataset
// builders. vw_MLReadyData reproduces the training-set predicate exactly:
// converged, validated, within balance tolerances, full feed composition.
var views = []view{
	{
		name: "vw_MLReadyData",
		query: `
SELECT
    s.Simulation_Id,
    s.Biooil_Id,
    c.ReformerTemperature_C,
    c.ReformerPressure_bar,
    c.SteamToCarbonRatio,
    c.BiooilFeedRate_kgh,
    c.SteamFeedRate_kgh,
    b.Aromatics_wt,
    b.Acids_wt,
    b.Alcohols_wt,
    b.Furans_wt,
    b.Phenols_wt,
    b.AldehydeKetone_wt,
    p.H2_Yield_kg,
    p.H2_Purity_percent,
    p.H2_CO_Ratio,
    p.H2_CO2_Ratio,
    p.CH4_Slip_percent,
    p.CO_Slip_ppm,
    p.Carbon_Conversion_percent,
    p.Energy_Efficiency_percent,
    e.Thermal_Efficiency_percent
FROM AspenSimulation s
JOIN ReformingConditions c ON c.Simulation_Id = s.Simulation_Id
JOIN HydrogenProduct p ON p.Simulation_Id = s.Simulation_Id
JOIN Biooil b ON b.Biooil_Id = s.Biooil_Id
LEFT JOIN EnergyBalance e ON e.Simulation_Id = s.Simulation_Id
WHERE s.ConvergenceStatus = 'Converged'
  AND s.ValidationFlag = 1
  AND s.MassBalanceError_percent <= 0.1
  AND s.EnergyBalanceError_percent <= 1.0
  AND b.Aromatics_wt IS NOT NULL
  AND b.Acids_wt IS NOT NULL
  AND b.Alcohols_wt IS NOT NULL
  AND b.Furans_wt IS NOT NULL
  AND b.Phenols_wt IS NOT NULL
  AND b.AldehydeKetone_wt IS NOT NULL`,
	},
	{
		name: "vw_SimulationSummary",
		query: `
SELECT
    s.ConvergenceStatus,
    COUNT(*) AS RunCount,
    SUM(CASE WHEN s.ValidationFlag = 1 THEN 1 ELSE 0 END) AS ValidatedCount,
    AVG(s.MassBalanceError_percent) AS AvgMassBalanceError_percent,
    AVG(s.EnergyBalanceError_percent) AS AvgEnergyBalanceError_percent
FROM AspenSimulation s
GROUP BY s.ConvergenceStatus`,
	},
	{
		name: "vw_SyngasByLocation",
		query: `
SELECT
    g.StreamLocation,
    COUNT(*) AS SampleCount,
    AVG(g.H2_molpercent) AS AvgH2_molpercent,
    AVG(g.CO_molpercent) AS AvgCO_molpercent,
    AVG(g.CO2_molpercent) AS AvgCO2_molpercent,
    AVG(g.CH4_molpercent) AS AvgCH4_molpercent,
    AVG(g.H2O_molpercent) AS AvgH2O_molpercent,
    AVG(g.Temperature_C) AS AvgTemperature_C,
    AVG(g.Pressure_bar) AS AvgPressure_bar
FROM SyngasComposition g
JOIN AspenSimulation s ON s.Simulation_Id = g.Simulation_Id
WHERE s.ConvergenceStatus = 'Converged'
GROUP BY g.StreamLocation`,
	},
	{
		name: "vw_EnergyEfficiency",
		query: `
SELECT
    s.Simulation_Id,
    s.Biooil_Id,
    c.ReformerTemperature_C,
    c.ReformerPressure_bar,
    c.SteamToCarbonRatio,
    e.TotalEnergyInput_MJ,
    e.H2Product_HHV_MJ,
    e.Thermal_Efficiency_percent,
    e.Carbon_Efficiency_percent,
    p.Specific_Energy_MJperkg_H2
FROM EnergyBalance e
JOIN AspenSimulation s ON s.Simulation_Id = e.Simulation_Id
JOIN ReformingConditions c ON c.Simulation_Id = s.Simulation_Id
LEFT JOIN HydrogenProduct p ON p.Simulation_Id = s.Simulation_Id
WHERE s.ConvergenceStatus = 'Converged'`,
	},
}
