// Package wire 定义节点间 RPC 的消息格式与编解码
//
// 消息格式由 message.proto 定义，schema.go 构造对应描述符，
// 编解码通过 dynamicpb 与 proto.Marshal 完成。字段号固定：
//
//	1  op        varint
//	2  response  varint(bool)
//	3  from      bytes(20)
//	4  to        bytes(20)
//	5  key       bytes
//	6  value     bytes
//	7  target    bytes(20)
//	8  peers     repeated bytes(20)
//	9  found     varint(bool)
//	10 status    varint
//
// 未知字段在解码时跳过。key/value 字段仅在切片非 nil 时编码，
// 解码后出现的字段总是非 nil，因此"空值"与"无值"可区分。
package wire
