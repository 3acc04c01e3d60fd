package ipc

import (
	"fmt"
	"net"
	"time"
)

// Client talks to a running compositor's control socket.
type Client struct {
	conn net.Conn
}

// Connect dials the control socket. Empty path selects the default.
func Connect(socketPath string) (*Client, error) {
	if socketPath == "" {
		var err error
		socketPath, err = DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("is the compositor running? failed to connect to %s: %w", socketPath, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(reqType string) (Response, error) {
	if err := writeFrame(c.conn, Request{Type: reqType}); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := readFrame(c.conn, &resp); err != nil {
		return Response{}, err
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("compositor error: %s", resp.Error)
	}
	return resp, nil
}

// Status queries the running compositor's status.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.roundTrip(RequestStatus)
	if err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("malformed status response")
	}
	return resp.Status, nil
}

// Dump fetches the full state JSON.
func (c *Client) Dump() ([]byte, error) {
	resp, err := c.roundTrip(RequestDump)
	if err != nil {
		return nil, err
	}
	return resp.Dump, nil
}
