package planflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/dsl"
)

// ExampleNewFromGraph builds a flow in Go and walks it. The second question
// asks for a value the passport already holds, so the engine answers it.
func ExampleNewFromGraph() {
	b := dsl.New()
	b.Root("q1", "q2", "end")
	b.Add("q1").
		Question("property.type", "What is the property?").
		Option("q1_house", "residential.dwelling.house", "A house").
		Option("q1_flat", "residential.dwelling.flat", "A flat")
	b.Add("q2").
		Question("property.type", "Is it a house?").
		Option("q2_house", "residential.dwelling.house", "Yes").
		Option("q2_other", "", "No")
	b.Add("end").Content(domain.TypeConfirmation, "Done", "")

	g, err := b.Graph()
	if err != nil {
		log.Fatal(err)
	}
	eng, err := planflow.NewFromGraph(g)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	card, _ := eng.Advance(ctx)
	fmt.Println("card:", card)

	if err := eng.Record(ctx, card, &domain.UserData{Answers: []string{"q1_house"}}); err != nil {
		log.Fatal(err)
	}
	card, _ = eng.Advance(ctx)
	fmt.Println("card:", card)

	q2, _ := eng.Breadcrumbs().Get("q2")
	fmt.Println("q2:", q2.Answers, "auto:", q2.Auto)
	fmt.Println("passport:", eng.ComputePassport().Strings("property.type"))

	// Output:
	// card: q1
	// card: end
	// q2: [q2_house] auto: true
	// passport: [residential.dwelling.house]
}
