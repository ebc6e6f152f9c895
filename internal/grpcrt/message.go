package grpcrt

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// setMessageFieldsByJSON populates msg's fields from a decoded JSON object,
// matching keys against each field's protobuf JSON name. Unknown keys are
// ignored so a template can carry args the target message doesn't declare.
func setMessageFieldsByJSON(msg protoreflect.Message, data map[string]any) error {
	if data == nil {
		return nil
	}
	fields := msg.Descriptor().Fields()
	byJSON := make(map[string]protoreflect.FieldDescriptor, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		f := fields.Get(i)
		byJSON[string(f.JSONName())] = f
	}
	for k, v := range data {
		fd := byJSON[k]
		if fd == nil || v == nil {
			continue
		}
		if fd.Cardinality() == protoreflect.Repeated {
			items, ok := v.([]any)
			if !ok {
				return fmt.Errorf("grpcrt: field %s expects a list, got %T", fd.JSONName(), v)
			}
			list := msg.Mutable(fd).List()
			for _, it := range items {
				pv, err := toProtoScalarOrMessage(fd, it)
				if err != nil {
					return err
				}
				list.Append(pv)
			}
			msg.Set(fd, protoreflect.ValueOfList(list))
			continue
		}
		val, err := toProtoScalarOrMessage(fd, v)
		if err != nil {
			return err
		}
		msg.Set(fd, val)
	}
	return nil
}

func toProtoScalarOrMessage(fd protoreflect.FieldDescriptor, v any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if b, ok := v.(bool); ok {
			return protoreflect.ValueOfBool(b), nil
		}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfInt32(int32(n)), nil
		}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfInt64(int64(n)), nil
		}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfUint32(uint32(n)), nil
		}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfUint64(uint64(n)), nil
		}
	case protoreflect.FloatKind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfFloat32(float32(n)), nil
		}
	case protoreflect.DoubleKind:
		if n, ok := v.(float64); ok {
			return protoreflect.ValueOfFloat64(n), nil
		}
	case protoreflect.StringKind:
		if s, ok := v.(string); ok {
			return protoreflect.ValueOfString(s), nil
		}
	case protoreflect.BytesKind:
		if s, ok := v.(string); ok {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return protoreflect.Value{}, fmt.Errorf("grpcrt: field %s: %w", fd.JSONName(), err)
			}
			return protoreflect.ValueOfBytes(b), nil
		}
	case protoreflect.EnumKind:
		if s, ok := v.(string); ok {
			if val := fd.Enum().Values().ByName(protoreflect.Name(s)); val != nil {
				return protoreflect.ValueOfEnum(val.Number()), nil
			}
		}
	case protoreflect.MessageKind:
		if mv, ok := v.(map[string]any); ok {
			msg := dynamicpb.NewMessage(fd.Message())
			if err := setMessageFieldsByJSON(msg, mv); err != nil {
				return protoreflect.Value{}, err
			}
			return protoreflect.ValueOfMessage(msg), nil
		}
	}
	return protoreflect.Value{}, fmt.Errorf("grpcrt: unsupported value %v (%T) for field %s", v, v, fd.JSONName())
}

// messageToValue converts a response message into a dynval.Value, walking
// every populated field generically rather than assuming any particular
// envelope shape.
func messageToValue(msg protoreflect.Message) dynval.Value {
	if msg == nil {
		return dynval.Null
	}
	fields := msg.Descriptor().Fields()
	out := make(map[string]dynval.Value, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if fd.Cardinality() != protoreflect.Repeated && !msg.Has(fd) {
			out[string(fd.JSONName())] = dynval.Null
			continue
		}
		out[string(fd.JSONName())] = fieldValueToDynval(fd, msg.Get(fd))
	}
	return dynval.Object(out)
}

func fieldValueToDynval(fd protoreflect.FieldDescriptor, v protoreflect.Value) dynval.Value {
	if fd.Cardinality() == protoreflect.Repeated {
		list := v.List()
		items := make([]dynval.Value, list.Len())
		for i := 0; i < list.Len(); i++ {
			items[i] = scalarOrMessageToDynval(fd, list.Get(i))
		}
		return dynval.Array(items...)
	}
	return scalarOrMessageToDynval(fd, v)
}

func scalarOrMessageToDynval(fd protoreflect.FieldDescriptor, v protoreflect.Value) dynval.Value {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return dynval.Bool(v.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return dynval.Number(float64(v.Int()))
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return dynval.Number(float64(v.Uint()))
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return dynval.Number(v.Float())
	case protoreflect.StringKind:
		return dynval.String(v.String())
	case protoreflect.BytesKind:
		return dynval.String(base64.StdEncoding.EncodeToString(v.Bytes()))
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return dynval.String(string(ev.Name()))
		}
		return dynval.Number(float64(v.Enum()))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return messageToValue(v.Message())
	default:
		return dynval.Null
	}
}
