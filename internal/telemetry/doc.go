// Package telemetry provides OpenTelemetry tracing and metrics for rmwiki.
//
// Spans cover inbound HTTP requests and outbound calls to the Rick and
// Morty API. OTel metrics carry HTTP server instrumentation; domain counters
// live in Prometheus and are scraped from /metrics.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer("rmwiki.rickmorty").Start(ctx, "rickmorty.GetCharacter")
//	defer span.End()
//
// # Configuration
//
//	observability:
//	  enable_telemetry: true
//	  otlp_endpoint: "localhost:4317"
//	  otlp_protocol: "grpc"   # or "http/protobuf"
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
