// Package runner drives a full validation pass: catalog fetch, optional
// sampling, sequential probing with politeness delays, classification,
// tallying, and the optional remediation loop for failed stamps.
//
// Execution is strictly sequential with one in-flight request at a time.
// The low request volume (hundreds of stamps) makes fixed sleeps a better
// fit than adaptive backoff or a worker pool, and it keeps the run's
// ordering deterministic for a given catalog and sample.
package runner
