/*
Package device drives the physiological recorder that plays the beeps.

The recorder speaks a small text protocol over a serial line: the host sends
"DELAY<ms>;" followed by "START;", the device plays the stimulus sequence
locked to the participant's heartbeat and answers "ENDED;" when it is done.
Serial implements that exchange; Simulated stands in for it with a fixed wait
when no device is attached.
*/
package device
