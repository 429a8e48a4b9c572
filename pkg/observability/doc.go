/*
Package observability turns engine lifecycle events into logs and Prometheus metrics.

Both are plain domain.LifecycleHooks and can be combined with domain.MergeHooks.
*/
package observability
