// Package logging builds the structured loggers used across gradpath.
//
// Loggers are plain *slog.Logger values with a JSON or text handler. The
// handler also copies audit fields from the context into each record:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.WithAuditID(ctx, audit.ID)
//	logger.InfoContext(ctx, "Audit stored")  // includes audit_id
//
// Components receive a logger and scope it with
// logger.With("component", "...").
package logging
