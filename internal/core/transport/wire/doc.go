// Package wire 定义 overlay 传输的线上格式
//
// 所有帧都是 varint 长度前缀 + protobuf 线格式字段：
//
//	[uvarint len][fields...]
//
// 欢迎帧（握手）字段：
//
//	1 destination   string  发送方拨号时指向的地址
//	2 public_addr   string  发送方的返回（逻辑）地址
//	3 peer_id       string
//	4 group_id      string
//	5 version       string
//	6 no_propagate  varint
//
// 消息帧字段：
//
//	1 source        string
//	2 destination   string
//	3 element       bytes（重复）
//	    1 namespace 2 name 3 mime 4 data 5 compressed(varint)
package wire
