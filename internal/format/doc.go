// Package format holds pure formatting helpers shared by the console and
// dashboard front ends: durations, ETAs, progress bars and the single-line
// job progress report. Nothing here touches global state or writes output.
package format
