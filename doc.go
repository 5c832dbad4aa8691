// Package wsframe is a frame level codec for the WebSocket protocol.
//
// See https://tools.ietf.org/html/rfc6455#section-5
//
// A Parser decodes frame headers from input delivered in chunks of any
// size, down to a single byte per call, and hands back a Descriptor.
// Payload bytes are never consumed by the Parser; the caller reads
// Descriptor.PayloadLength bytes itself and unmasks them with Mask.
//
//	p := wsframe.NewParser(nil)
//	n, err := p.Execute(buf)
//	if err != nil {
//		// The parse cycle is over, Reset or drop the connection.
//	}
//	buf = buf[n:]
//	if p.HeaderParsed() {
//		d := p.Descriptor()
//		// Read d.PayloadLength() bytes, then p.Reset().
//	}
//
// WriteHeader and AppendFrame go the other way.
//
// The codec accepts reserved opcodes, RSV bits and non minimal length
// encodings. Use a Policy to reject them.
//
// Package wsstream drives the codec from an io.Reader or io.Writer.
package wsframe
