// Package domain contains the result types produced by the checker: the
// registration status of a domain, the best-effort traffic and backlink
// estimates, and the per-domain aggregate handed to the reporting layer.
// The types are free of infrastructure concerns so every package can share them.
package domain
