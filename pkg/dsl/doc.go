/*
Package dsl builds flow graphs in Go instead of YAML or JSON documents.

It is mostly useful for tests, generated flows and embedding small flows in
programs:

	b := dsl.New()
	b.Root("use", "result")

	b.Add("use").
		Question("property.type", "What type of property is it?").
		Option("use_house", "residential.dwelling.house", "House").
		Option("use_flat", "residential.dwelling.flat", "Flat", "flag.pp.permissionNeeded")

	b.Add("result").Content(domain.TypeResult, "Your result", "")

	g, err := b.Graph()
	// ... pass g to planflow.NewFromGraph, or b.Loader("householder") to planflow.WithLoader
*/
package dsl
