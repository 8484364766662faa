package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Load opens a review session over the archive at path.
func (c *Client) Load(archive string) (*LoadResponse, error) {
	var resp LoadResponse
	if err := c.client.Call("Postmark.Load", LoadRequest{Archive: archive}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseSession tears down one session.
func (c *Client) CloseSession(sessionID string) (*CloseSessionResponse, error) {
	var resp CloseSessionResponse
	if err := c.client.Call("Postmark.CloseSession", CloseSessionRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Postmark.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Current returns the record under the cursor.
func (c *Client) Current(sessionID string) (*ViewResponse, error) {
	var resp ViewResponse
	if err := c.client.Call("Postmark.Current", ViewRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Next advances the cursor cyclically.
func (c *Client) Next(sessionID string) (*ViewResponse, error) {
	var resp ViewResponse
	if err := c.client.Call("Postmark.Next", ViewRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Prev moves the cursor back cyclically.
func (c *Client) Prev(sessionID string) (*ViewResponse, error) {
	var resp ViewResponse
	if err := c.client.Call("Postmark.Prev", ViewRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Goto moves the cursor to an exact record key.
func (c *Client) Goto(sessionID, key string) (*GotoResponse, error) {
	var resp GotoResponse
	if err := c.client.Call("Postmark.Goto", GotoRequest{SessionID: sessionID, Key: key}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Annotate saves a judgment for the cursor record.
func (c *Client) Annotate(sessionID, label, explanation string) (*ViewResponse, error) {
	var resp ViewResponse
	req := AnnotateRequest{SessionID: sessionID, Label: label, Explanation: explanation}
	if err := c.client.Call("Postmark.Annotate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Keys lists record keys of a session in index order.
func (c *Client) Keys(sessionID string) (*KeysResponse, error) {
	var resp KeysResponse
	if err := c.client.Call("Postmark.Keys", KeysRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Collisions lists key collisions recorded while indexing.
func (c *Client) Collisions(sessionID string) (*CollisionsResponse, error) {
	var resp CollisionsResponse
	if err := c.client.Call("Postmark.Collisions", CollisionsRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export writes the session's CSV dump on the daemon side.
func (c *Client) Export(sessionID, path string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Postmark.Export", ExportRequest{SessionID: sessionID, Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Postmark.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
