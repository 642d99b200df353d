/*
Package dsl provides a fluent builder for constructing funnel definitions
programmatically.

It lets Go code define branching quiz flows with type checking and IDE
completion instead of hand-editing JSON or YAML files. This is useful for
generated funnels, seed data and tests.

Example usage:

	f, err := dsl.New("Plan picker").
		Start("welcome", "Welcome").
		Question("q1", "Which plan fits you?",
			dsl.Choice("a", "Starter"),
			dsl.Choice("b", "Pro"),
		).
		Form("contact", "Your details",
			dsl.Field("email", "Email", funnel.FieldEmail),
		).
		Result("done", "All set", "Thanks!").
		Go("welcome", "q1").
		When("q1", "a", "contact").
		When("q1", "b", "done").
		Go("contact", "done").
		Build()

The result is a wire-format *funnel.Funnel that passes validation and can
be fed straight to a project store or the execution engine.
*/
package dsl
