// Package logger builds *slog.Logger values with functional options.
//
// New selects a JSON or text handler, applies static attributes and wraps
// the handler so that registered ContextExtractor callbacks can add
// request-scoped attributes, such as the request id or the session id, to
// every record logged with a context.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithContextExtractors(session.LogAttr),
//	)
//	log.InfoContext(r.Context(), "handled")
//
// Attribute helpers (Error, SessionID, RequestID, Component, Placement) keep
// key names consistent across packages.
package logger
