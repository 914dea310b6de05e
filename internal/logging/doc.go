// Package logging is rmwiki's structured logger: Zap underneath, with the
// request context passed on every call.
//
// Each entry picks up trace_id/span_id from the active span and the
// request.id and http.route set by the HTTP middleware. Entries go to a
// local writer (stdout by default) and, when telemetry is enabled, to the
// OpenTelemetry log bridge. Info and warn bursts are sampled; errors never
// are. TraceLevel sits below Debug and is used for raw upstream responses.
//
// # Usage
//
//	cfg, err := logging.FromObservability(appCfg.Observability)
//	if err != nil {
//	    return err
//	}
//	logger, err := logging.NewLogger(cfg, tel.LoggerProvider())
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "characters loaded", logging.Page(2), zap.Int("count", n))
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	loader := wiki.New(src, chars, ui, wiki.WithLogger(tl.Logger))
//	...
//	tl.AssertLogged(t, zapcore.WarnLevel, "load failed")
//	tl.AssertField(t, "load failed", logging.KeyOperation, "GetSingleCharacter")
package logging
