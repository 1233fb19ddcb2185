// Package retention prunes stored audits by age and by count, optionally
// archiving them as JSON first, and runs pruning on a cron schedule.
package retention
