/*
Package quizkit is an engine for branching quiz and lead funnels: an
author builds a directed graph of steps (questions, forms, content,
results) connected by conditional edges, publishes it under a stable
slug, and visitors are walked through the graph based on their answers.

The package is organized hexagonally. The core is pure and storage-free:
structural validation in pkg/funnel, the immutable graph model in
pkg/graph and the execution engine in pkg/runtime. Persistence, locking and
transports are adapters behind the contracts in pkg/ports; in-memory and
Redis stores ship in pkg/adapters, along with a JSON HTTP API.

# Usage

	store := memory.NewStore()
	svc, err := quizkit.New(store)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	project, err := svc.CreateProject(ctx, f) // f is a *funnel.Funnel
	if err != nil {
		log.Fatal(err)
	}

	// Walk a visitor through the graph.
	eng, _ := svc.Session(ctx, project.ID)
	state, _ := eng.Start(ctx)
	state, _ = eng.Advance(ctx, state, "")        // leave the start step
	state, _ = eng.Advance(ctx, state, "opt-yes") // answer a question
	state, _, _ = eng.SubmitLead(ctx, state, "a@b.com", "Ada")

Every transition is a pure function of the immutable graph, the visitor's
own state and the input, so replaying the same call sequence always
reproduces the same final state and answer map.
*/
package quizkit
