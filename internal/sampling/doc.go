// Package sampling provides reference samplers that feed estimation jobs: a
// uniform sampler over a box for a small catalog of integrands with known
// values, and the adversarial sequence that defeats an uncompensated running
// mean. The samplers are single-threaded and deterministic for a given seed.
package sampling
