/*
Package hdt runs the Heartbeat Discrimination Task: an interoception
experiment in which a participant hears beeps triggered by their own
heartbeat at varying delays and judges whether the beeps came before, at
the same time as, or after each heartbeat.

# Concept

A session walks through instructions, a practice block of random delays,
a series of adaptive staircases and a short questionnaire. Each staircase
converges on the delay at which the participant's judgement flips. It
moves with an n-up/n-down rule and stops after a number of reversals or
counted trials, whichever comes first. Every administered trial is
appended to a TSV log, and optionally mirrored to SQLite and Redis.

The stimulus itself is produced by an external recorder that listens on a
serial line. The module only tells it which delay to use and waits for the
sequence to end; a simulated device is available for dry runs.

# Usage

	cfg, err := hdt.LoadConfig("hdt.yaml")
	if err != nil {
		log.Fatal(err)
	}

	exp, err := hdt.New(cfg, hdt.WithLogger(slog.Default()))
	if err != nil {
		log.Fatal(err)
	}

	res, err := exp.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Thresholds)

Every collaborator (prompter, device, record sink, instruction pages) can
be injected with an option, which is how the tests drive whole sessions
without a terminal or a recorder.
*/
package hdt
