package thirdparty

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/errd"
	"nhooyr.io/wsframe/internal/test/assert"
	"nhooyr.io/wsframe/internal/test/xrand"
	"nhooyr.io/wsframe/wsjson"
	"nhooyr.io/wsframe/wsstream"
)

// TestGorilla exchanges frames with a gorilla/websocket echo server
// routed through gin.
func TestGorilla(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	errs := make(chan error, 1)
	r.GET("/echo", func(ginCtx *gin.Context) {
		errs <- echoServer(ginCtx.Writer, ginCtx.Request)
	})

	s := httptest.NewServer(r)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	c, br, err := dial(ctx, s.Listener.Addr().String(), "/echo")
	assert.Success(t, err)
	defer c.Close()

	fr := wsstream.NewReader(br, &wsframe.Policy{
		RequireMinimalLength:    true,
		RejectReservedOpcodes:   true,
		RejectReservedBits:      true,
		RejectControlViolations: true,
	})
	fw := wsstream.NewWriter(c, &wsstream.WriterOptions{Mask: true})

	for _, n := range []int{0, 5, 125, 126, 300, 65535, 65536, 70000} {
		op := wsframe.OpBinary
		if n%2 == 1 {
			op = wsframe.OpText
		}
		payload := []byte(strings.Repeat("x", n))
		if op == wsframe.OpBinary {
			payload = xrand.Bytes(n)
		}

		err = fw.WriteFrame(true, op, payload)
		assert.Success(t, err)

		d, err := fr.Next()
		assert.Success(t, err)
		assert.Equal(t, "fin", true, d.Header.Fin)
		assert.Equal(t, "opcode", op, d.Header.Opcode)
		// Servers never mask.
		assert.Equal(t, "masked", false, d.Header.Masked)
		assert.Equal(t, "payload length", uint64(n), d.PayloadLength())

		got, err := io.ReadAll(fr)
		assert.Success(t, err)
		assert.Equal(t, "payload", payload, got)
	}

	err = wsjson.Write(fw, map[string]string{"hello": "gorilla"})
	assert.Success(t, err)

	var v map[string]string
	err = wsjson.Read(fr, &v)
	assert.Success(t, err)
	assert.Equal(t, "json", map[string]string{"hello": "gorilla"}, v)

	closePayload := []byte{0x03, 0xe8}
	err = fw.WriteFrame(true, wsframe.OpClose, closePayload)
	assert.Success(t, err)

	d, err := fr.Next()
	assert.Success(t, err)
	assert.Equal(t, "opcode", wsframe.OpClose, d.Header.Opcode)

	got, err := io.ReadAll(fr)
	assert.Success(t, err)
	assert.Equal(t, "close payload", closePayload, got)

	select {
	case err := <-errs:
		assert.Success(t, err)
	case <-ctx.Done():
		t.Fatal(ctx.Err())
	}
}

// TestGorillaFragmented checks that gorilla reassembles a message
// split over continuation frames written by the codec.
func TestGorillaFragmented(t *testing.T) {
	t.Parallel()

	msgs := make(chan string, 1)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		_, p, err := c.ReadMessage()
		if err != nil {
			msgs <- err.Error()
			return
		}
		msgs <- string(p)
	}))
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	c, _, err := dial(ctx, s.Listener.Addr().String(), "/")
	assert.Success(t, err)
	defer c.Close()

	fw := wsstream.NewWriter(c, &wsstream.WriterOptions{Mask: true})
	err = fw.WriteFrame(false, wsframe.OpText, []byte("Hel"))
	assert.Success(t, err)
	err = fw.WriteFrame(true, wsframe.OpPing, []byte("interleaved"))
	assert.Success(t, err)
	err = fw.WriteFrame(true, wsframe.OpContinuation, []byte("lo"))
	assert.Success(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "msg", "Hello", msg)
	case <-ctx.Done():
		t.Fatal(ctx.Err())
	}
}

func echoServer(w http.ResponseWriter, r *http.Request) (err error) {
	defer errd.Wrap(&err, "echo server failed")

	u := websocket.Upgrader{
		ReadBufferSize:  1 << 10,
		WriteBufferSize: 1 << 10,
	}
	c, err := u.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	for {
		typ, p, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		err = c.WriteMessage(typ, p)
		if err != nil {
			return err
		}
	}
}

// dial performs the opening handshake by hand and returns the connection
// with a reader positioned at the first frame.
func dial(ctx context.Context, addr, path string) (_ net.Conn, _ *bufio.Reader, err error) {
	defer errd.Wrap(&err, "failed to dial %v", addr)

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.SetDeadline(deadline)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Sec-WebSocket-Version", "13")

	err = req.Write(c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}

	br := bufio.NewReader(c)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		c.Close()
		return nil, nil, fmt.Errorf("expected status %v but got %v", http.StatusSwitchingProtocols, resp.StatusCode)
	}
	if got := resp.Header.Get("Sec-WebSocket-Accept"); got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		c.Close()
		return nil, nil, fmt.Errorf("unexpected Sec-WebSocket-Accept %q", got)
	}
	return c, br, nil
}
