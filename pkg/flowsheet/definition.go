package flowsheet

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	APIVersionV1 = "v1"
	KindModel    = "Model"

	EngineEquilib = "equilib"
	EngineAspen   = "aspen"

	// DefaultVersion is the engine version recorded on runs when the model
	// does not pin one. The downstream schema predates this tool and
	// expects the legacy default.
	DefaultVersion = "V8.8"
)

// Fractions lists the feed composition keys every model must bind, in
// canonical order.
var Fractions = []string{
	"aromatics",
	"acids",
	"alcohols",
	"furans",
	"phenols",
	"aldehyde_ketone",
}

// Setpoints lists the fixed unit setpoints every model must bind.
var Setpoints = []string{
	"hts_temperature_c",
	"lts_temperature_c",
	"psa_pressure_bar",
}

// Locations lists the sampled stream locations every model must bind, in
// process order.
var Locations = []string{"Reformer_Out", "HTS_Out", "LTS_Out", "PSA_In"}

// Components is the default tracked gas species set.
var Components = []string{"H2", "CO", "CO2", "CH4", "H2O", "N2"}

// ProductFields lists the product-group metrics a model must expose.
var ProductFields = []string{
	"h2_yield_kg",
	"h2_purity_percent",
	"h2_flowrate_kgh",
	"h2_flowrate_nm3h",
	"h2_co_ratio",
	"h2_co2_ratio",
	"co2_production_kg",
	"co2_purity_percent",
	"ch4_slip_percent",
	"co_slip_ppm",
	"carbon_conversion_percent",
	"h2_recovery_percent",
	"energy_efficiency_percent",
	"specific_energy_mj_per_kg",
	"tailgas_flowrate_kgh",
	"tailgas_hhv_mj_per_kg",
}

// EnergyFields lists the energy-group duties a model must expose.
var EnergyFields = []string{
	"biooil_hhv_mj",
	"preheater_heat_mj",
	"reformer_heat_mj",
	"total_input_mj",
	"h2_product_hhv_mj",
	"tailgas_energy_mj",
	"heat_recovered_mj",
	"heat_loss_mj",
	"thermal_efficiency_percent",
	"carbon_efficiency_percent",
}

// StreamMetrics lists the per-stream state leaves next to the component
// mole fractions.
var StreamMetrics = []string{
	"temperature_c",
	"pressure_bar",
	"massflow_kgh",
	"molarflow_kmolh",
}

// Definition models the root flowsheet document: which engine solves it and
// where every input and output lives in the engine's variable tree. The
// driver never hardcodes a path; it only dereferences bindings declared
// here.
type Definition struct {
	Schema     string   `yaml:"$schema,omitempty" json:"$schema,omitempty"`
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Engine     string   `yaml:"engine,omitempty" json:"engine,omitempty"`
	Version    string   `yaml:"version,omitempty" json:"version,omitempty"`
	Components []string `yaml:"components,omitempty" json:"components,omitempty"`
	Inputs     Inputs   `yaml:"inputs" json:"inputs"`
	Outputs    Outputs  `yaml:"outputs" json:"outputs"`
	Streams    []Stream `yaml:"streams" json:"streams"`
}

// Metadata contains descriptive data for the model.
type Metadata struct {
	Name        string            `yaml:"name" json:"name"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Inputs binds the feed and operating variables to engine paths.
type Inputs struct {
	Fractions   map[string]string `yaml:"fractions" json:"fractions"`
	FeedRate    string            `yaml:"feedRate" json:"feedRate"`
	SteamRate   string            `yaml:"steamRate" json:"steamRate"`
	Temperature string            `yaml:"temperature" json:"temperature"`
	Pressure    string            `yaml:"pressure" json:"pressure"`
	Setpoints   map[string]string `yaml:"setpoints" json:"setpoints"`
}

// Outputs binds the solver status and the result groups to engine paths.
type Outputs struct {
	Status      string            `yaml:"status" json:"status"`
	Iterations  string            `yaml:"iterations" json:"iterations"`
	MassError   string            `yaml:"massError" json:"massError"`
	EnergyError string            `yaml:"energyError" json:"energyError"`
	Product     map[string]string `yaml:"product" json:"product"`
	Energy      map[string]string `yaml:"energy" json:"energy"`
}

// Stream binds one sampled location to the base path of its stream group.
// Component fractions and state metrics live under the base path.
type Stream struct {
	Location string `yaml:"location" json:"location"`
	Path     string `yaml:"path" json:"path"`
}

// Component returns the engine path of one component mole fraction in the
// stream group.
func (s Stream) Component(name string) string {
	return s.Path + "." + strings.ToLower(name)
}

// Metric returns the engine path of one state metric in the stream group.
func (s Stream) Metric(name string) string {
	return s.Path + "." + name
}

// Stream looks a bound stream up by location.
func (d *Definition) Stream(location string) (Stream, bool) {
	for _, s := range d.Streams {
		if s.Location == location {
			return s, true
		}
	}
	return Stream{}, false
}

// Parse parses YAML bytes into a validated Definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// pathRE accepts dotted lowercase identifiers with at least two segments.
var pathRE = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// Validate performs semantic validation on the definition and fills the
// optional fields with their defaults.
func (d *Definition) Validate() error {
	if d.APIVersion != APIVersionV1 {
		return fmt.Errorf("unsupported apiVersion: %s", d.APIVersion)
	}
	if d.Kind != KindModel {
		return fmt.Errorf("unsupported kind: %s", d.Kind)
	}
	if strings.TrimSpace(d.Metadata.Name) == "" {
		return fmt.Errorf("metadata.name is required")
	}

	if d.Engine == "" {
		d.Engine = EngineEquilib
	}
	switch d.Engine {
	case EngineEquilib, EngineAspen:
	default:
		return fmt.Errorf("engine must be one of [%s,%s]", EngineEquilib, EngineAspen)
	}
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	if len(d.Components) == 0 {
		d.Components = append([]string(nil), Components...)
	}
	seen := make(map[string]struct{}, len(d.Components))
	for i, c := range d.Components {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("components[%d] is empty", i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate component %q", c)
		}
		seen[c] = struct{}{}
	}

	if err := validateInputs(&d.Inputs); err != nil {
		return err
	}
	if err := validateOutputs(&d.Outputs); err != nil {
		return err
	}
	return validateStreams(d.Streams)
}

func validatePath(field, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !pathRE.MatchString(path) {
		return fmt.Errorf("%s: invalid path %q", field, path)
	}
	return nil
}

func validateBindings(field string, bindings map[string]string, required []string) error {
	for _, key := range required {
		path, ok := bindings[key]
		if !ok {
			return fmt.Errorf("%s.%s is required", field, key)
		}
		if err := validatePath(field+"."+key, path); err != nil {
			return err
		}
	}
	for key := range bindings {
		known := false
		for _, r := range required {
			if key == r {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s.%s is not a known binding", field, key)
		}
	}
	return nil
}

func validateInputs(in *Inputs) error {
	if err := validateBindings("inputs.fractions", in.Fractions, Fractions); err != nil {
		return err
	}
	if err := validatePath("inputs.feedRate", in.FeedRate); err != nil {
		return err
	}
	if err := validatePath("inputs.steamRate", in.SteamRate); err != nil {
		return err
	}
	if err := validatePath("inputs.temperature", in.Temperature); err != nil {
		return err
	}
	if err := validatePath("inputs.pressure", in.Pressure); err != nil {
		return err
	}
	return validateBindings("inputs.setpoints", in.Setpoints, Setpoints)
}

func validateOutputs(out *Outputs) error {
	if err := validatePath("outputs.status", out.Status); err != nil {
		return err
	}
	if err := validatePath("outputs.iterations", out.Iterations); err != nil {
		return err
	}
	if err := validatePath("outputs.massError", out.MassError); err != nil {
		return err
	}
	if err := validatePath("outputs.energyError", out.EnergyError); err != nil {
		return err
	}
	if err := validateBindings("outputs.product", out.Product, ProductFields); err != nil {
		return err
	}
	return validateBindings("outputs.energy", out.Energy, EnergyFields)
}

func validateStreams(streams []Stream) error {
	if len(streams) == 0 {
		return fmt.Errorf("streams must contain at least one entry")
	}
	bound := make(map[string]int, len(streams))
	for i, s := range streams {
		known := false
		for _, loc := range Locations {
			if s.Location == loc {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("streams[%d].location %q is not a known location", i, s.Location)
		}
		if _, dup := bound[s.Location]; dup {
			return fmt.Errorf("duplicate stream location %q", s.Location)
		}
		bound[s.Location] = i
		if err := validatePath(fmt.Sprintf("streams[%d].path", i), s.Path); err != nil {
			return err
		}
	}
	for _, loc := range Locations {
		if _, ok := bound[loc]; !ok {
			return fmt.Errorf("streams is missing location %q", loc)
		}
	}
	return nil
}
