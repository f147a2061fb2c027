// Package shell holds the contracts shared by the lending query slices and the helpers that
// instrument them with metrics, tracing and logging.
//
// Query slices implement CoreQueryHandler with business logic only: validate the query, fetch the
// loans from the data source, project them with the lending package. Observability and caching are
// applied from the outside by the observable and cache packages.
//
// RetryWithExponentialBackoff retries transient failures of background work such as cache
// warming. Query handlers themselves never retry.
//
// In Hexagonal Architecture terminology this is the application layer around the lending core.
package shell
