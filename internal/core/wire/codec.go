package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// ErrMalformed 消息格式错误
var ErrMalformed = errors.New("wire: malformed message")

var marshalOptions = proto.MarshalOptions{Deterministic: true}

// Encode 编码消息
func Encode(m *Message) ([]byte, error) {
	pm := dynamicpb.NewMessage(schema.desc)

	pm.Set(schema.op, protoreflect.ValueOfUint32(uint32(m.Op)))
	if m.Response {
		pm.Set(schema.response, protoreflect.ValueOfBool(true))
	}
	pm.Set(schema.from, idValue(m.From))
	pm.Set(schema.to, idValue(m.To))
	if m.Key != nil {
		pm.Set(schema.key, protoreflect.ValueOfBytes(m.Key))
	}
	if m.Value != nil {
		pm.Set(schema.value, protoreflect.ValueOfBytes(m.Value))
	}
	if m.Op == OpFindNode {
		pm.Set(schema.target, idValue(m.Target))
	}
	if len(m.Peers) > 0 {
		peers := pm.Mutable(schema.peers).List()
		for _, p := range m.Peers {
			peers.Append(idValue(p))
		}
	}
	if m.Found {
		pm.Set(schema.found, protoreflect.ValueOfBool(true))
	}
	if m.Status != StatusOK {
		pm.Set(schema.status, protoreflect.ValueOfUint32(uint32(m.Status)))
	}

	b, err := marshalOptions.Marshal(pm)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", m.Op, err)
	}
	return b, nil
}

func idValue(id types.NodeID) protoreflect.Value {
	return protoreflect.ValueOfBytes(id.Bytes())
}

// Decode 解码消息
//
// 已知字段的线类型不符时视为格式错误；未知字段跳过。
func Decode(b []byte) (*Message, error) {
	pm := dynamicpb.NewMessage(schema.desc)
	if err := proto.Unmarshal(b, pm); err != nil {
		return nil, malformed("unmarshal", err)
	}
	if err := checkUnknown(pm.GetUnknown()); err != nil {
		return nil, err
	}

	m := &Message{
		Op:       Op(pm.Get(schema.op).Uint()),
		Response: pm.Get(schema.response).Bool(),
		Found:    pm.Get(schema.found).Bool(),
		Status:   Status(pm.Get(schema.status).Uint()),
	}
	if pm.Has(schema.key) {
		m.Key = append([]byte{}, pm.Get(schema.key).Bytes()...)
	}
	if pm.Has(schema.value) {
		m.Value = append([]byte{}, pm.Get(schema.value).Bytes()...)
	}

	var err error
	if m.From, err = idField(pm, schema.from); err != nil {
		return nil, err
	}
	if m.To, err = idField(pm, schema.to); err != nil {
		return nil, err
	}
	if m.Target, err = idField(pm, schema.target); err != nil {
		return nil, err
	}

	peers := pm.Get(schema.peers).List()
	for i := 0; i < peers.Len(); i++ {
		id, err := types.NodeIDFromBytes(peers.Get(i).Bytes())
		if err != nil {
			return nil, malformed("peers", err)
		}
		m.Peers = append(m.Peers, id)
	}
	return m, nil
}

// idField 读取可选的标识字段，缺失时返回零值
func idField(pm *dynamicpb.Message, fd protoreflect.FieldDescriptor) (types.NodeID, error) {
	if !pm.Has(fd) {
		return types.NodeID{}, nil
	}
	id, err := types.NodeIDFromBytes(pm.Get(fd).Bytes())
	if err != nil {
		return types.NodeID{}, malformed(string(fd.Name()), err)
	}
	return id, nil
}

// checkUnknown 拒绝字段号已知但线类型不符的字段
//
// proto.Unmarshal 会把这类字段放进未知字段而不报错。
func checkUnknown(raw protoreflect.RawFields) error {
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeField(raw)
		if n < 0 {
			return malformed("unknown fields", protowire.ParseError(n))
		}
		if fd := schema.desc.Fields().ByNumber(num); fd != nil {
			return malformed(string(fd.Name()), fmt.Errorf("unexpected wire type %d", typ))
		}
		raw = raw[n:]
	}
	return nil
}

func malformed(where string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, where, err)
}
