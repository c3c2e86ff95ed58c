// Package cli renders estimation runs on a console: a spinner with a
// progress line while jobs run, then a results table and per-job reports.
//
// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayProgress], [DisplayKahanComparison].
//
//   - Print* functions write the run banner before jobs start.
//     Examples: [PrintExecutionConfig], [PrintExecutionMode].
package cli
