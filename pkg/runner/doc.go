/*
Package runner implements the terminal surface of a session.

Terminal satisfies ports.Prompter over a line-oriented reader and writer.
Input is read by a single pump goroutine so every prompt stays responsive
to context cancellation. Typing quit, exit or esc at any prompt aborts the
session with domain.ErrCancelled.

# Usage

	term := runner.NewTerminal(os.Stdin, os.Stdout,
		runner.WithRenderer(tui.NewRenderer()),
	)

	n, err := term.Confidence(ctx, "How confident are you in your response?")
*/
package runner
