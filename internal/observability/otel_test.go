package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tbourn/skillswap-backend/internal/config"
)

func keepGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func enabled(name string) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "localhost:4317", ServiceName: name, SampleRatio: 1}
}

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	keepGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Endpoint: "ignored:4317"}, Build{Version: "v0"})
	if err != nil || shutdown == nil {
		t.Fatalf("disabled setup: shutdown=%v err=%v", shutdown != nil, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatalf("disabled tracing must not replace the provider")
	}
}

func TestSetupOTel_InstallsProviderAndPropagator(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		keepGlobals(t)
		cfg := enabled("svc")
		cfg.Insecure = insecure

		shutdown, err := SetupOTel(context.Background(), cfg, Build{Version: "v1.2.3", Instance: "node-a"})
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: expected sdk tracer provider", insecure)
		}

		carrier := propagation.MapCarrier{}
		ctx, span := otel.Tracer("test").Start(context.Background(), "span")
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		span.End()
		if carrier.Get("traceparent") == "" {
			t.Fatalf("insecure=%v: traceparent not injected", insecure)
		}

		sctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(sctx)
		cancel()
	}
}

func TestSetupOTel_ResourceCarriesBuild(t *testing.T) {
	keepGlobals(t)
	orig := newResource
	t.Cleanup(func() { newResource = orig })

	var got *resource.Resource
	newResource = func(ctx context.Context, service string, b Build) (*resource.Resource, error) {
		r, err := orig(ctx, service, b)
		got = r
		return r, err
	}

	shutdown, err := SetupOTel(context.Background(), enabled(""), Build{Version: "v9", Instance: "node-b"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	want := map[string]string{
		string(semconv.ServiceNameKey):       DefaultServiceName,
		string(semconv.ServiceVersionKey):    "v9",
		string(semconv.ServiceInstanceIDKey): "node-b",
	}
	seen := map[string]string{}
	for _, kv := range got.Attributes() {
		seen[string(kv.Key)] = kv.Value.Emit()
	}
	for k, v := range want {
		if seen[k] != v {
			t.Fatalf("resource %s = %q, want %q", k, seen[k], v)
		}
	}
}

func TestSetupOTel_SeamErrorsLeaveGlobals(t *testing.T) {
	cases := map[string]func(){
		"exporter": func() {
			newExporter = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("boom-exporter")
			}
		},
		"resource": func() {
			newResource = func(context.Context, string, Build) (*resource.Resource, error) {
				return nil, errors.New("boom-resource")
			}
		},
	}
	for name, breakIt := range cases {
		keepGlobals(t)
		origExp, origRes := newExporter, newResource
		breakIt()

		tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
		if _, err := SetupOTel(context.Background(), enabled("svc"), Build{}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if otel.GetTracerProvider() != tp || otel.GetTextMapPropagator() != prop {
			t.Fatalf("%s: globals changed on failure", name)
		}
		newExporter, newResource = origExp, origRes
	}
}

func TestServiceNameAndRatio(t *testing.T) {
	if got := ServiceName(config.OTELConfig{ServiceName: "  "}); got != DefaultServiceName {
		t.Fatalf("ServiceName blank = %q", got)
	}
	if got := ServiceName(config.OTELConfig{ServiceName: "api"}); got != "api" {
		t.Fatalf("ServiceName = %q", got)
	}
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v) = %v", in, got)
		}
	}
}
