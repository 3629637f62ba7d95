// Package notify resolves notification backends from configuration and
// dispatches health reports to them.
//
// Backends are registered explicitly under the alias that locates their
// configuration entry:
//
//	reg := notify.NewRegistry(cfg, notify.WithLogger(logger))
//	_ = reg.Register("slackNotificationMethod", notify.Typed(slack.New))
//
// Typed binds the entry's string settings to the backend's own settings
// struct by name. A backend whose settings cannot be bound is excluded from
// the enabled set; its siblings are unaffected.
//
// Dispatcher sends one report to every enabled backend. Each send has its own
// outcome: a failing backend never prevents delivery to the others.
package notify
