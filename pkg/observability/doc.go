/*
Package observability provides Prometheus instrumentation for the hello service.

Request counts and latencies are recorded per chi route pattern on a private
registry, which is served on its own listener so that the application surface
is left untouched.
*/
package observability
