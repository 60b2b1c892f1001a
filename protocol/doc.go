// Package protocol implements the learner wire format.
//
// Every frame starts with version(1) and type(1) bytes. All integers are
// 64-bit, little endian.
//
//	request:  version type operation item attribute matrix row column name_length data_length | name | data
//	response: version type code data_length | data
//
// The header and variable segments are written with one vectored write and
// read back with one fixed-size header read followed by one read of the
// declared segment lengths.
//
// A version or type mismatch, a truncated frame or an oversized frame
// leaves the stream without a recoverable frame boundary; IsProtocolError
// identifies these errors so that callers drop the connection.
package protocol
