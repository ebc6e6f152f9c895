// Package graphqlrt dispatches GraphQL IO calls issued by the IR evaluator:
// it turns a rendered template.Rendered GraphQL operation back into GraphQL
// query text using internal/language's gqlparser wrapper to validate the
// composed document, then forwards it as a standard POST to a fixed
// upstream endpoint.
package graphqlrt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/language"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Client implements internal/runtime.Client for OpGraphQL IO nodes,
// forwarding every call to one fixed upstream endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
}

var _ runtime.Client = (*Client)(nil)

// NewClient builds a Client targeting endpoint. A nil hc falls back to
// http.DefaultClient. headers are sent with every forwarded request (e.g. a
// static upstream API key).
func NewClient(endpoint string, hc *http.Client, headers map[string]string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: hc, headers: headers}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) Do(ctx context.Context, rendered template.Rendered) (dynval.Value, error) {
	query, vars := buildQuery(rendered)
	if _, err := language.ParseQuery(query); err != nil {
		return dynval.Null, fmt.Errorf("graphqlrt: composed invalid query: %w", err)
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return dynval.Null, fmt.Errorf("graphqlrt: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return dynval.Null, fmt.Errorf("graphqlrt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dynval.Null, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return dynval.Null, fmt.Errorf("graphqlrt: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return dynval.Null, &runtime.StatusError{Code: resp.StatusCode, Message: string(raw)}
	}

	var decoded gqlResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return dynval.Null, fmt.Errorf("graphqlrt: decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return dynval.Null, fmt.Errorf("graphqlrt: upstream returned %d error(s): %s", len(decoded.Errors), decoded.Errors[0].Message)
	}

	var dataField map[string]any
	if len(decoded.Data) > 0 {
		if err := json.Unmarshal(decoded.Data, &dataField); err != nil {
			return dynval.Null, fmt.Errorf("graphqlrt: decode data: %w", err)
		}
	}
	return dynval.FromAny(dataField[rendered.GQLField]), nil
}

// buildQuery composes the outbound operation text and its variable map from
// a rendered GraphQL template. Variables are passed by reference (`$v0`, `$v1`, ...)
// rather than inlined, so upstream argument coercion rules still apply.
func buildQuery(rendered template.Rendered) (string, map[string]any) {
	opKeyword := "query"
	if rendered.GQLOperation == template.GraphQLMutation {
		opKeyword = "mutation"
	}

	names := make([]string, 0, len(rendered.GQLArgs))
	for name := range rendered.GQLArgs {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make(map[string]any, len(names))
	var decls, callArgs strings.Builder
	for i, name := range names {
		varName := "v" + strconv.Itoa(i)
		vars[varName] = rendered.GQLArgs[name].ToAny()
		if i > 0 {
			decls.WriteString(", ")
			callArgs.WriteString(", ")
		}
		fmt.Fprintf(&decls, "$%s: Any", varName)
		fmt.Fprintf(&callArgs, "%s: $%s", name, varName)
	}

	var b strings.Builder
	b.WriteString(opKeyword)
	if decls.Len() > 0 {
		fmt.Fprintf(&b, "(%s)", decls.String())
	}
	b.WriteString(" { ")
	b.WriteString(rendered.GQLField)
	if callArgs.Len() > 0 {
		fmt.Fprintf(&b, "(%s)", callArgs.String())
	}
	if rendered.GQLSelection != "" {
		fmt.Fprintf(&b, " %s", rendered.GQLSelection)
	}
	b.WriteString(" }")
	return b.String(), vars
}
