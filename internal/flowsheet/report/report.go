// Package report renders the flowsheet definition schema reference and
// aggregate conformance summaries over collections of definitions.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reformlab/reformer/pkg/flowsheet"
)

// Summary captures aggregate information about a collection of flowsheet
// definitions.
type Summary struct {
	Total        int
	Engines      map[string]int
	StreamCounts map[string]int
	MissingNames []string
	Invalid      map[string]string
}

// Analyze builds a Summary for the provided definitions. Validation
// failures are collected per model rather than aborting the report.
func Analyze(defs []*flowsheet.Definition) Summary {
	summary := Summary{
		Total:        len(defs),
		Engines:      make(map[string]int),
		StreamCounts: make(map[string]int),
		Invalid:      make(map[string]string),
	}

	for i, def := range defs {
		name := strings.TrimSpace(def.Metadata.Name)
		if name == "" {
			name = fmt.Sprintf("definition[%d]", i)
			summary.MissingNames = append(summary.MissingNames, name)
		}

		engine := strings.TrimSpace(def.Engine)
		if engine == "" {
			engine = flowsheet.EngineEquilib
		}
		summary.Engines[engine]++

		for _, stream := range def.Streams {
			summary.StreamCounts[stream.Location]++
		}

		if err := def.Validate(); err != nil {
			summary.Invalid[name] = err.Error()
		}
	}

	return summary
}

// Markdown renders the schema reference for flowsheet model YAML.
func Markdown() string {
	var b strings.Builder

	b.WriteString("# Flowsheet Model Schema\n\n")
	b.WriteString("This document is generated from the flowsheet definition Go structs (`pkg/flowsheet`). It highlights the required sections and bindings.\n\n")

	b.WriteString("## Top-Level Fields\n\n")
	b.WriteString("| Field | Type | Required | Notes |\n")
	b.WriteString("|-------|------|----------|-------|\n")
	b.WriteString("| `$schema` | string | optional | JSON schema reference for tooling. |\n")
	b.WriteString("| `apiVersion` | string | required | Must be `v1`. |\n")
	b.WriteString("| `kind` | string | required | Must be `Model`. |\n")
	b.WriteString("| `metadata` | object | required | Includes name, labels, annotations. |\n")
	b.WriteString(fmt.Sprintf("| `engine` | string | optional | One of `%s`, `%s`. Defaults to `%s`. |\n",
		flowsheet.EngineEquilib, flowsheet.EngineAspen, flowsheet.EngineEquilib))
	b.WriteString(fmt.Sprintf("| `version` | string | optional | Engine version recorded on runs. Defaults to `%s`. |\n", flowsheet.DefaultVersion))
	b.WriteString(fmt.Sprintf("| `components` | array[string] | optional | Tracked gas species. Defaults to `%s`. |\n", strings.Join(flowsheet.Components, " ")))
	b.WriteString("| `inputs` | object | required | Binds feed and operating variables to engine paths. |\n")
	b.WriteString("| `outputs` | object | required | Binds solver status and result groups to engine paths. |\n")
	b.WriteString("| `streams` | array | required | Sampled syngas locations. |\n\n")

	b.WriteString("## Inputs\n\n")
	b.WriteString("| Field | Required | Notes |\n")
	b.WriteString("|-------|----------|-------|\n")
	b.WriteString(fmt.Sprintf("| `fractions` | required | One binding per feed fraction: `%s`. |\n", strings.Join(flowsheet.Fractions, "`, `")))
	b.WriteString("| `feedRate` | required | Bio-oil mass feed, kg/h. |\n")
	b.WriteString("| `steamRate` | required | Steam mass feed, kg/h. |\n")
	b.WriteString("| `temperature` | required | Reformer temperature, C. |\n")
	b.WriteString("| `pressure` | required | Reformer pressure, bar. |\n")
	b.WriteString(fmt.Sprintf("| `setpoints` | required | Fixed unit setpoints: `%s`. |\n\n", strings.Join(flowsheet.Setpoints, "`, `")))

	b.WriteString("## Outputs\n\n")
	b.WriteString("| Field | Required | Notes |\n")
	b.WriteString("|-------|----------|-------|\n")
	b.WriteString("| `status` | required | Solver status path (0 ok, 1 error, 2 infeasible). |\n")
	b.WriteString("| `iterations` | optional | Solver iteration count path. |\n")
	b.WriteString("| `massError` | required | Mass balance closure error, percent. |\n")
	b.WriteString("| `energyError` | required | Energy balance closure error, percent. |\n")
	b.WriteString(fmt.Sprintf("| `product` | required | One binding per product metric: `%s`. |\n", strings.Join(flowsheet.ProductFields, "`, `")))
	b.WriteString(fmt.Sprintf("| `energy` | required | One binding per energy duty: `%s`. |\n\n", strings.Join(flowsheet.EnergyFields, "`, `")))

	b.WriteString("## Streams\n\n")
	b.WriteString(fmt.Sprintf("Each stream names one of the sampled locations (`%s`) and binds the component mole fractions (`%s`) plus the state metrics (`%s`).\n\n",
		strings.Join(flowsheet.Locations, "`, `"),
		strings.Join(flowsheet.Components, "`, `"),
		strings.Join(flowsheet.StreamMetrics, "`, `")))

	b.WriteString("## Secret References\n\n")
	b.WriteString("Annotation values may use `secret://` URIs for credentials consumed by the registry git sync. Supported providers: `env`, `file`, `vault`.\n")

	return b.String()
}

// RenderSummaryMarkdown converts a Summary into Markdown output.
func RenderSummaryMarkdown(summary Summary) string {
	var b strings.Builder

	b.WriteString("# Flowsheet Model Conformance Report\n\n")
	b.WriteString(fmt.Sprintf("Total definitions: **%d**\n\n", summary.Total))

	if len(summary.MissingNames) > 0 {
		names := append([]string(nil), summary.MissingNames...)
		sort.Strings(names)
		b.WriteString("## Missing Names\n\n")
		for _, entry := range names {
			b.WriteString(fmt.Sprintf("- %s\n", entry))
		}
		b.WriteString("\n")
	}

	if len(summary.Invalid) > 0 {
		names := make([]string, 0, len(summary.Invalid))
		for name := range summary.Invalid {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("## Validation Failures\n\n")
		for _, name := range names {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", name, summary.Invalid[name]))
		}
		b.WriteString("\n")
	}

	if len(summary.Engines) > 0 {
		b.WriteString("## Engines\n\n")
		writeCountTable(&b, summary.Engines)
	}

	if len(summary.StreamCounts) > 0 {
		b.WriteString("## Sampled Streams\n\n")
		writeCountTable(&b, summary.StreamCounts)
	}

	return b.String()
}

func writeCountTable(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("| Value | Count |\n")
	b.WriteString("|-------|-------|\n")
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("| `%s` | %d |\n", key, counts[key]))
	}
	b.WriteString("\n")
}
