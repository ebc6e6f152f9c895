package grpcrt

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// DescriptorSource resolves a gRPC method descriptor from the "/pkg.Service/Method"
// form produced by template.GRPCTemplate.FullMethod. Production code backs this
// with the process's compiled proto registry; tests supply a fixed map.
type DescriptorSource interface {
	MethodByFullName(fullMethod string) (protoreflect.MethodDescriptor, error)
}

// GlobalFiles resolves methods against protoregistry.GlobalFiles, i.e. every
// proto package linked into the binary via generated Go bindings.
type GlobalFiles struct{}

func (GlobalFiles) MethodByFullName(fullMethod string) (protoreflect.MethodDescriptor, error) {
	service, method, err := splitFullMethod(fullMethod)
	if err != nil {
		return nil, err
	}
	desc, err := protoregistry.GlobalFiles.FindDescriptorByName(protoreflect.FullName(service))
	if err != nil {
		return nil, fmt.Errorf("grpcrt: unknown service %s: %w", service, err)
	}
	sd, ok := desc.(protoreflect.ServiceDescriptor)
	if !ok {
		return nil, fmt.Errorf("grpcrt: %s is not a service", service)
	}
	md := sd.Methods().ByName(protoreflect.Name(method))
	if md == nil {
		return nil, fmt.Errorf("grpcrt: service %s has no method %s", service, method)
	}
	return md, nil
}

// StaticMap is a DescriptorSource backed by a fixed lookup table, used by
// tests and by callers that wire descriptors up front rather than relying on
// global proto registration.
type StaticMap map[string]protoreflect.MethodDescriptor

func (m StaticMap) MethodByFullName(fullMethod string) (protoreflect.MethodDescriptor, error) {
	md, ok := m[fullMethod]
	if !ok {
		return nil, fmt.Errorf("grpcrt: no descriptor registered for %s", fullMethod)
	}
	return md, nil
}

func splitFullMethod(fullMethod string) (service, method string, err error) {
	s := fullMethod
	if len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("grpcrt: malformed full method %q", fullMethod)
}
