// Package harness runs end-to-end scenarios against the query parser
// and the tool registry.
//
// A scenario bundles a tool manifest directory, a service description
// (model, entities, release) and a path query, then states what the
// run should produce: which tools come back suitable, which entity
// sets each tool receives, and whether parsing the query fails.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: gene-report-basic
//	description: "Gene list plus a simple query matches the id-driven tools"
//	tools_dir: ../tools/basic
//	release: "5.1"
//	model:
//	  - Gene
//	  - Gene.symbol
//	entities:
//	  Gene:
//	    class: Gene
//	    format: ids
//	    value: [101, 204]
//	query: |
//	  <query view="Gene.symbol Gene.length"/>
//	expect:
//	  tools:
//	    - genomeRegions
//	  entities:
//	    genomeRegions: [Gene]
//
// Relative tools_dir paths resolve against the scenario file's
// directory, so fixture trees can ship next to their scenarios.
//
// # Outcomes and Golden Files
//
// Running a scenario produces an Outcome: the parsed query (or the
// parse error code), the sorted suitable tool names, and the entity
// names offered to each tool. Outcomes marshal to stable JSON, which
// RunWithGolden compares against files under testdata/golden using
// goldie. The expect block in the YAML covers the same facts in a
// reviewer-friendly form; evaluate checks it on every run.
//
// Parse failures with a known code (malformed XML, missing view) are
// recorded on the outcome rather than returned as errors, so scenarios
// can assert on them like any other result.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/gene-report-basic.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.NewRunner().Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass() {
//	    for _, f := range result.Failures {
//	        log.Println(f)
//	    }
//	}
package harness
