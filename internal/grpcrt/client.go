// Package grpcrt dispatches gRPC IO calls issued by the IR evaluator. It
// builds a dynamicpb request message from a rendered template, invokes it
// through a pooled internal/grpctp.Transport, and converts the response back
// into a dynval.Value generically, field by field, instead of assuming any
// fixed envelope shape.
package grpcrt

import (
	"context"
	"fmt"

	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Client implements internal/runtime.Client for OpGRPC IO nodes.
type Client struct {
	descriptors DescriptorSource
	transport   Transport
}

var _ runtime.Client = (*Client)(nil)

func NewClient(descriptors DescriptorSource, transport Transport) *Client {
	return &Client{descriptors: descriptors, transport: transport}
}

func (c *Client) Do(ctx context.Context, rendered template.Rendered) (dynval.Value, error) {
	md, err := c.descriptors.MethodByFullName(rendered.GRPCMethod)
	if err != nil {
		return dynval.Null, err
	}

	req := dynamicpb.NewMessage(md.Input())
	fields, ok := rendered.GRPCMessage.ToAny().(map[string]any)
	if !ok && !rendered.GRPCMessage.IsNull() {
		return dynval.Null, fmt.Errorf("grpcrt: rendered message must be an object, got %T", rendered.GRPCMessage.ToAny())
	}
	if err := setMessageFieldsByJSON(req, fields); err != nil {
		return dynval.Null, err
	}

	resp, err := c.transport.Call(ctx, md, req)
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return dynval.Null, &runtime.StatusError{Code: int(st.Code()), Message: st.Message()}
		}
		return dynval.Null, err
	}
	return messageToValue(resp), nil
}
