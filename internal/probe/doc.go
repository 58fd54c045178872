// Package probe issues single preview requests against the rendering
// service and normalizes every possible outcome, including transport
// failures and redirects, into a model.ProbeResult. Probing never returns
// an error: failure is data here.
package probe
