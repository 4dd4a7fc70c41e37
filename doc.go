/*
Package planflow is a navigation engine for branching planning questionnaires.

A flow is a directed graph of typed nodes (questions, checklists, answers,
property lookups, inputs, sections). The engine records which nodes have been
answered as breadcrumbs, derives a key-value passport from them, and uses the
passport to skip questions whose answer is already known.

# Concept

Everything is a pure function of the flow graph and the breadcrumbs: the
passport, the upcoming cards, the section progress and the result pages. The
same breadcrumbs always produce the same passport, in the same canonical
depth-first order. The engine never performs I/O itself; flows come from a
ports.FlowLoader and sessions are persisted as domain.Snapshot values by a
ports.SessionStore.

# Key Features

  - Auto-answer: decisions are inferred from the passport with exact matches
    preferred over granular prefix matches.
  - Editing: going back caches later answers, and re-answering a location
    invalidates the answers that depended on it.
  - Sections: weighted progress over top-level section nodes.
  - Results: ranked outcome flags per category.

# Usage

	eng, err := planflow.New(ctx, "householder",
		planflow.WithLoader(file.NewLoader("./flows")),
	)
	if err != nil {
		log.Fatal(err)
	}

	for {
		card, err := eng.Advance(ctx) // records every auto-answerable card
		if err != nil {
			log.Fatal(err)
		}
		if card == "" {
			break
		}
		// Ask the user about card, then:
		_ = eng.Record(ctx, card, &domain.UserData{Answers: []string{"..."}})
	}

	snap := eng.Snapshot() // persist with any ports.SessionStore
*/
package planflow
