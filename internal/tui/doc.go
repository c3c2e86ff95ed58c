// Package tui implements the interactive dashboard.
//
// The dashboard runs every estimation job through the orchestration layer
// and polls the job handles to show each job's progress, running estimate,
// error estimate and projected completion time. A braille chart plots the
// running estimate of the selected job while system load is sampled through
// sysmon. The selected job can be cancelled from the keyboard.
package tui
