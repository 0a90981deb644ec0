// Package metrics emits named, versioned, tagged metrics through a pluggable adapter.
//
// A metric is identified by a domain, a name, and a version. Its canonical name is derived once,
// at construction, as "{domain}.{name}.v{version}":
//
//	domain            name                        version  canonical name
//	billing           invoices_sent               1        billing.invoices_sent.v1
//	billing           invoices_sent               2        billing.invoices_sent.v2
//	enterprise_sales  salesforce_synchronization  1        enterprise_sales.salesforce_synchronization.v1
//
// The canonical name is both the key looked up in the delivery table and the key under which
// pushed data appears in every envelope. Downstream storage maps value types on first sight, so a
// metric whose value types change should be published under a new version.
//
// Delivery is opt-in per environment: a metric is forwarded to its adapter only when the
// delivery table maps its canonical name to the boolean true. Anything else, including a missing
// entry or a truthy non-boolean, silently disables it.
//
// Publish hooks report on the emitter itself (publish latency and adapter failures) and are
// decoupled from the adapter that carries the metrics.
package metrics
