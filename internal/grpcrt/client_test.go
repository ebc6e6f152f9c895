package grpcrt_test

import (
	"context"
	"testing"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/grpcrt"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// buildEchoMethod constructs an in-memory "echo.Echo/Get" method descriptor
// whose request has a string "id" field and whose response has a string
// "name" field and a repeated string "tags" field, without depending on any
// generated .pb.go package.
func buildEchoMethod(t *testing.T) protoreflect.MethodDescriptor {
	t.Helper()
	strKind := descriptorpb.FieldDescriptorProto_TYPE_STRING
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto("echo.proto"),
		Package: proto("echo"),
		Syntax:  proto("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto("GetRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto("id"), Number: i32(1), Type: &strKind, Label: &optional},
				},
			},
			{
				Name: proto("GetResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto("name"), Number: i32(1), Type: &strKind, Label: &optional},
					{Name: proto("tags"), Number: i32(2), Type: &strKind, Label: &repeated},
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto("Echo"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{Name: proto("Get"), InputType: proto(".echo.GetRequest"), OutputType: proto(".echo.GetResponse")},
				},
			},
		},
	}
	file, err := protodesc.NewFile(fd, nil)
	if err != nil {
		t.Fatalf("build file descriptor: %v", err)
	}
	return file.Services().ByName("Echo").Methods().ByName("Get")
}

func proto(s string) *string { return &s }
func i32(n int32) *int32     { return &n }

func TestClientDoBuildsRequestAndDecodesResponse(t *testing.T) {
	md := buildEchoMethod(t)
	resp := dynamicpb.NewMessage(md.Output())
	resp.Set(resp.Descriptor().Fields().ByName("name"), protoreflect.ValueOfString("ada"))

	transport := grpcrt.NewMockTransport(resp)
	client := grpcrt.NewClient(grpcrt.StaticMap{"/echo.Echo/Get": md}, transport)

	rendered := template.Rendered{
		Kind:        template.KindGRPC,
		GRPCMethod:  "/echo.Echo/Get",
		GRPCMessage: dynval.Object(map[string]dynval.Value{"id": dynval.String("42")}),
	}
	out, err := client.Do(context.Background(), rendered)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Object()["name"].StringVal() != "ada" {
		t.Fatalf("name = %v", out.ToAny())
	}

	calls := transport.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	sentID := calls[0].Request.ProtoReflect().Get(md.Input().Fields().ByName("id")).String()
	if sentID != "42" {
		t.Fatalf("request id = %q", sentID)
	}
}

func TestClientDoUnknownMethodErrors(t *testing.T) {
	client := grpcrt.NewClient(grpcrt.StaticMap{}, grpcrt.NewMockTransport())
	_, err := client.Do(context.Background(), template.Rendered{Kind: template.KindGRPC, GRPCMethod: "/echo.Echo/Missing"})
	if err == nil {
		t.Fatal("expected error for unregistered method")
	}
}
