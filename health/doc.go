// Package health provides the check side of the health notifier: the Check
// contract, the Registry of available checks, and the Aggregator that runs
// them into a Report.
//
// # Core Concepts
//
// A Check produces one Result with a Status of Success, Warning, Error or
// Info. A Registry keeps checks in registration order and filters out the
// IDs disabled globally or for notification. The Aggregator runs the enabled
// checks and records a check that errors or panics as an Error entry, so one
// broken check never hides the others.
//
// # Basic Usage
//
//	reg := health.NewRegistry(health.WithDisabled("legacy-disk"))
//	_ = reg.Register(health.NewMemoryCheck(health.MemoryCheckConfig{}))
//	_ = reg.Register(health.NewCheck("db", "Database", pingDB))
//
//	agg := health.NewAggregator(health.AggregatorConfig{CheckTimeout: 10 * time.Second})
//	report, err := agg.Run(ctx, reg.Enabled())
//	if err != nil {
//	    return err // cancelled
//	}
//	fmt.Println(report.Overall(), report.Counts())
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, notifier, nil) // any ReportSource
package health
