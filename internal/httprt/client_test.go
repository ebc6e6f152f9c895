package httprt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"context"

	"github.com/tailcallhq/tailcall-go/internal/httprt"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

func TestClientDoDecodesJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "7" {
			t.Errorf("query id = %q", r.URL.Query().Get("id"))
		}
		if r.Header.Get("X-Auth") != "tok" {
			t.Errorf("header X-Auth = %q", r.Header.Get("X-Auth"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"ada"}`))
	}))
	defer srv.Close()

	client := httprt.NewClient(nil)
	rendered := template.Rendered{
		Kind:    template.KindHTTP,
		Method:  template.MethodGet,
		URL:     srv.URL + "/users",
		Query:   []template.KV{{Key: "id", Value: "7"}},
		Headers: []template.KV{{Key: "X-Auth", Value: "tok"}},
	}
	out, err := client.Do(context.Background(), rendered)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Object()["name"].StringVal() != "ada" {
		t.Fatalf("unexpected value: %v", out.ToAny())
	}
}

func TestClientDoReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	client := httprt.NewClient(nil)
	_, err := client.Do(context.Background(), template.Rendered{Kind: template.KindHTTP, Method: template.MethodGet, URL: srv.URL})
	if err == nil {
		t.Fatal("expected error")
	}
	if se, ok := err.(*runtime.StatusError); !ok || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v (%T)", err, err)
	}
}
