/*
Package ports defines the interfaces between the session core and its collaborators.

These interfaces decouple the staircase and orchestration logic from the
terminal, the stimulus hardware, and the storage of trial records, so each can
be replaced by a scripted double in tests.

# Key Interfaces

  - TrialRunner: Presents one stimulus at a given delay and returns the participant's response.
  - Stimulator: Drives the physiological recorder for one stimulus sequence.
  - Prompter: Collects participant and operator input (confidence, choices, confirmations).
  - RecordSink: Append-only store for trial records.
  - PageLoader: Source of instruction pages.
*/
package ports
