// Package export writes stored audits as JSON or CSV. The retention pruner
// uses the JSON exporter to archive audits before deleting them.
package export
