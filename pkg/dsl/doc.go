/*
Package dsl provides a Go DSL for building botflow graphs without YAML or JSON files.

The builder produces the same document the compiler reads from disk, so `To`
shorthand, branch edges and variable defaults behave exactly as they do in a flow
file. It is handy for tests, generated flows and IDE autocompletion.

Example usage:

	flow := dsl.NewFlow("signup")
	flow.Var("email")

	flow.Block("start").
		Text("hello", "Welcome!").
		To("ask")

	flow.Block("ask").
		Input("email", "What is your email?", "email").
		To("done")

	flow.Block("done").
		Text("bye", "Thanks, we will be in touch.")

	// The loader can be passed to botflow.New with botflow.WithLoader.
	loader, err := flow.Build()
*/
package dsl
