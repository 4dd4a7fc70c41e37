/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured log lines.

Hooks are plain functions on domain.LifecycleHooks, so several consumers can
be combined with Combine and handed to the engine once.
*/
package observability
