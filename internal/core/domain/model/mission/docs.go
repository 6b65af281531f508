// Package mission implements the Mission aggregate and its lifecycle state machine.
//
// A mission is one drone's end-to-end delivery of exactly one order. It is created
// QUEUED from a Plan, moved only through the transition table in Status, and owns its
// route, telemetry path, timeline, estimates and actuals. Terminal missions
// (COMPLETED, ABORTED, FAILED) never change again.
//
// Computed values that do not belong in storage, such as the elapsed duration or the
// progress percentage, are plain functions over a Mission.
package mission
