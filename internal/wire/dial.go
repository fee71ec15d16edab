package wire

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/coder/websocket"
)

// Dial connects to a server at addr, which is either tcp://host:port or ws(s)://host/path.
func Dial(ctx context.Context, addr string) (*Endpoint, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse address %q: %w", addr, err)
	}

	switch u.Scheme {
	case "tcp":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("dial %q: %w", addr, err)
		}
		return NewEndpoint(conn), nil

	case "ws", "wss":
		c, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial %q: %w", addr, err)
		}
		return NewEndpoint(NetConn(c)), nil
	}
	return nil, fmt.Errorf("address %q: unsupported scheme %q", addr, u.Scheme)
}

// NetConn adapts a websocket connection to the framing used by Endpoint.
// The connection outlives the context it was dialled or accepted with.
func NetConn(c *websocket.Conn) net.Conn {
	c.SetReadLimit(MaxFrame + 4)
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary)
}
