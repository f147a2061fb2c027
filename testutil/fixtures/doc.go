// Package fixtures builds lending records for tests.
//
// IDs come from an IDSequence that each test creates and passes into the builders, so tests
// never share counters and stay independent when run in parallel.
package fixtures
