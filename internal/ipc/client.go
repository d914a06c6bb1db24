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

// Submit starts an asynchronous job.
func (c *Client) Submit(req SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.client.Call(ServiceName+".Submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves one job's status.
func (c *Client) Status(req StatusRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List retrieves all jobs.
func (c *Client) List() (*ListResponse, error) {
	var resp ListResponse
	if err := c.client.Call(ServiceName+".List", ListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Remove deletes a job.
func (c *Client) Remove(req RemoveRequest) (*RemoveResponse, error) {
	var resp RemoveResponse
	if err := c.client.Call(ServiceName+".Remove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Archive resolves a finished job's bundle path.
func (c *Client) Archive(req ArchiveRequest) (*ArchiveResponse, error) {
	var resp ArchiveResponse
	if err := c.client.Call(ServiceName+".Archive", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Convert runs the synchronous single-file mode.
func (c *Client) Convert(req ConvertRequest) (*ConvertResponse, error) {
	var resp ConvertResponse
	if err := c.client.Call(ServiceName+".Convert", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DaemonStatus retrieves daemon runtime information.
func (c *Client) DaemonStatus() (*DaemonStatusResponse, error) {
	var resp DaemonStatusResponse
	if err := c.client.Call(ServiceName+".DaemonStatus", DaemonStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
