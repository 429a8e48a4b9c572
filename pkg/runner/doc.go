/*
Package runner drives a session from a terminal or any line-oriented stream.

It walks the steps of each displayed block, hands their content to an IOHandler,
binds the answers of input steps and calls CompleteStep when a step leads somewhere.
The loop ends when the session completes or the input runs dry.

# Key Components

  - Runner: the step-walking loop.
  - IOHandler: decouples how steps are shown and answers are read.
  - TextHandler: plain text for interactive CLI usage.
  - JSONHandler: JSON lines for scripted or headless usage.
  - View: the pending steps of a session, shared with the HTTP and MCP adapters.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	sess, _, err := eng.Start(ctx, "welcome", domain.StartOptions{})
	if err != nil {
		log.Fatal(err)
	}
	if err := r.Run(ctx, eng, sess); err != nil {
		log.Fatal(err)
	}
*/
package runner
