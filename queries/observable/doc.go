// Package observable instruments lending query handlers with metrics, tracing and logging
// while keeping the handlers themselves free of infrastructure concerns.
//
// Wrapping happens at wiring time, outside of the handler:
//
//	coreHandler := mostloanedbooks.NewQueryHandler(loanStore)
//
//	handler, err := observable.NewQueryWrapper[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks](
//		coreHandler,
//		observable.WithQueryMetrics[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks](metricsCollector),
//		observable.WithQueryTracing[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks](tracingCollector),
//		observable.WithQueryContextualLogging[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks](logger),
//	)
//
// Every call gets its own query id, which is attached to the span and to all log lines of that call.
// Outcomes are classified as success, invalid_argument, canceled, timeout or error.
package observable
