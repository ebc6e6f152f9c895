package jsrt_test

import (
	"context"
	"testing"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/jsrt"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

func TestClientDoInvokesNamedFunction(t *testing.T) {
	client, err := jsrt.NewClient(`
		function upper(s) { return s.toUpperCase(); }
	`)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	rendered := template.Rendered{
		Kind:       template.KindJS,
		JSFunction: "upper",
		JSArg:      dynval.String("ada"),
	}
	out, err := client.Do(context.Background(), rendered)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.StringVal() != "ADA" {
		t.Fatalf("unexpected value: %v", out.ToAny())
	}
}

func TestClientDoUnknownFunctionErrors(t *testing.T) {
	client, err := jsrt.NewClient(`function noop() {}`)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Do(context.Background(), template.Rendered{Kind: template.KindJS, JSFunction: "missing"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClientDoRejectsCancelledContext(t *testing.T) {
	client, err := jsrt.NewClient(`function noop() {}`)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Do(ctx, template.Rendered{Kind: template.KindJS, JSFunction: "noop"})
	if err == nil {
		t.Fatal("expected error")
	}
}
