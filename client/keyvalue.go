package client

import (
	"context"

	"github.com/hupe1980/learner/protocol"
)

// SetKeyValue stores value under name.
func (c *Client) SetKeyValue(ctx context.Context, name string, value []byte) error {
	_, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpSet,
		Item:      protocol.ItemKeyValue,
		Name:      []byte(name),
		Data:      value,
	})

	return err
}

// GetKeyValue returns the value stored under name. A missing key is
// protocol.CodeUnknownKey.
func (c *Client) GetKeyValue(ctx context.Context, name string) ([]byte, error) {
	res, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpGet,
		Item:      protocol.ItemKeyValue,
		Name:      []byte(name),
	})
	if err != nil {
		return nil, err
	}

	return res.Data, nil
}

// DeleteKeyValue removes name.
func (c *Client) DeleteKeyValue(ctx context.Context, name string) error {
	_, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpDelete,
		Item:      protocol.ItemKeyValue,
		Name:      []byte(name),
	})

	return err
}
