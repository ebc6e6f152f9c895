package graphqlrt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/graphqlrt"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

func TestClientDoForwardsQueryAndExtractsField(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user":{"id":"42","name":"ada"}}}`))
	}))
	defer srv.Close()

	client := graphqlrt.NewClient(srv.URL, nil, nil)
	rendered := template.Rendered{
		Kind:         template.KindGraphQL,
		GQLOperation: template.GraphQLQuery,
		GQLField:     "user",
		GQLArgs:      map[string]dynval.Value{"id": dynval.String("42")},
		GQLSelection: "{ id name }",
	}
	out, err := client.Do(context.Background(), rendered)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Object()["name"].StringVal() != "ada" {
		t.Fatalf("unexpected value: %v", out.ToAny())
	}

	query, _ := received["query"].(string)
	if query == "" {
		t.Fatal("no query forwarded")
	}
	vars, _ := received["variables"].(map[string]any)
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable, got %v", vars)
	}
}

func TestClientDoReturnsUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	}))
	defer srv.Close()

	client := graphqlrt.NewClient(srv.URL, nil, nil)
	_, err := client.Do(context.Background(), template.Rendered{Kind: template.KindGraphQL, GQLField: "user"})
	if err == nil {
		t.Fatal("expected error")
	}
}
