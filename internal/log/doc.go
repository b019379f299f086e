// Package log provides slog-based logging that masks OFX sign-on credentials
// and HTTP secrets before they reach any output.
//
// The SecureHandler wraps any slog.Handler. Attributes whose key names a
// credential (USERPASS, USERID, Authorization, Cookie, ...) are replaced by
// MaskValue, and string values that carry an OFX request envelope have the
// credential elements rewritten in place so the rest of the envelope stays
// readable in debug output.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("sending probe", "body", envelope) // <USERPASS> is masked
//	slog.SetDefault(logger)
package log
