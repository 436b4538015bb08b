/*
Package domain contains the core vocabulary of the Heartbeat Discrimination Task.

It defines the participant responses and the staircase signals they map to,
the trial records handed to sinks, the lifecycle events emitted by the session,
and the sentinel errors shared by every layer. The package is pure: no I/O and
no dependencies outside the standard library.

# Key Entities

  - Response: The button a participant picked ("before", "same time", "after") and its code.
  - Signal: What a response means for a staircase (repeat, increase, decrease).
  - TrialRecord: One row of the session log.
  - LifecycleHooks: Callbacks for observability (logging, metrics, monitors).
*/
package domain
