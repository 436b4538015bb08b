package session

import (
	"context"

	"github.com/aretw0/hdt/pkg/ports"
)

// DefaultPages are shown when no instruction directory is configured.
var DefaultPages = []ports.Page{
	{
		ID:    "task",
		Title: "The task",
		Content: "In this task, we are interested in how well you can detect your heartbeats without manually feeling your pulse.\n\n" +
			"The computer will listen to 20 heartbeats at a time, and it will play a beep out loud on every second heartbeat, " +
			"so it will skip a heartbeat, and you will hear 10 beeps. It either plays the beep at the same time as your heartbeat, " +
			"slightly before, or slightly after.\n\n" +
			"Your task is to find out whether the beeps you hear happen before, at the same time, or after your heartbeat.",
	},
	{
		ID:    "responding",
		Title: "Responding",
		Content: "You will first see the heart on the screen which means the beeps are about to start. " +
			"If you'd like to close your eyes, you can use the heart as a sign to do that.\n\n" +
			"Once the beeps have finished, please tell me whether you think the beeps were \"before\", \"at the same time\", " +
			"or \"after\" your heartbeat.\n\n" +
			"Then, please tell me how confident you are in your decision on a scale from 0 (total Guess) to 100 (Certain).",
	},
	{
		ID:    "practice",
		Title: "Practice",
		Content: "The whole task takes about 30 minutes and you will be offered short breaks throughout.\n\n" +
			"We will now do a practice trial, so you can hear some beeps and practice how to respond.",
	},
}

// StaticPages serves a fixed page list.
type StaticPages []ports.Page

func (p StaticPages) Pages(_ context.Context) ([]ports.Page, error) {
	return p, nil
}
