// Package std provides small, generic plumbing node functions used to
// exercise end-to-end scheduler/pipe/runtime behavior: a stdin-to-slot
// passthrough, a stdout sink, and a byte-counting echo. None of these
// are specific to any particular model or actor; they are the
// equivalent of cat, tee, and wc -c for a Dag run.
package std
