package wire

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ============================================================================
//                              消息描述符
// ============================================================================

// messageSchema message.proto 中 Message 的描述符与字段
type messageSchema struct {
	desc protoreflect.MessageDescriptor

	op       protoreflect.FieldDescriptor
	response protoreflect.FieldDescriptor
	from     protoreflect.FieldDescriptor
	to       protoreflect.FieldDescriptor
	key      protoreflect.FieldDescriptor
	value    protoreflect.FieldDescriptor
	target   protoreflect.FieldDescriptor
	peers    protoreflect.FieldDescriptor
	found    protoreflect.FieldDescriptor
	status   protoreflect.FieldDescriptor
}

var schema = mustBuildSchema()

// fileDescriptorProto 与 message.proto 对应
//
// proto2 的 optional 字段带显式存在性，空 bytes 也会编码。
func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	var (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		u32      = descriptorpb.FieldDescriptorProto_TYPE_UINT32
		boolean  = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		raw      = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("kadcore/wire/message.proto"),
		Package: proto.String("kadcore.wire"),
		Syntax:  proto.String("proto2"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/dep2p/go-kadcore/internal/core/wire"),
		},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Message"),
			Field: []*descriptorpb.FieldDescriptorProto{
				fieldProto("op", 1, u32, optional),
				fieldProto("response", 2, boolean, optional),
				fieldProto("from", 3, raw, optional),
				fieldProto("to", 4, raw, optional),
				fieldProto("key", 5, raw, optional),
				fieldProto("value", 6, raw, optional),
				fieldProto("target", 7, raw, optional),
				fieldProto("peers", 8, raw, repeated),
				fieldProto("found", 9, boolean, optional),
				fieldProto("status", 10, u32, optional),
			},
		}},
	}
}

func fieldProto(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type, label descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(num),
		Type:     typ.Enum(),
		Label:    label.Enum(),
	}
}

func mustBuildSchema() *messageSchema {
	fd, err := protodesc.NewFile(fileDescriptorProto(), new(protoregistry.Files))
	if err != nil {
		panic("wire: invalid message descriptor: " + err.Error())
	}
	md := fd.Messages().ByName("Message")
	fields := md.Fields()
	return &messageSchema{
		desc:     md,
		op:       fields.ByName("op"),
		response: fields.ByName("response"),
		from:     fields.ByName("from"),
		to:       fields.ByName("to"),
		key:      fields.ByName("key"),
		value:    fields.ByName("value"),
		target:   fields.ByName("target"),
		peers:    fields.ByName("peers"),
		found:    fields.ByName("found"),
		status:   fields.ByName("status"),
	}
}
