package client

import (
	"context"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// ApplyPushToken implements usergrid.DeviceClient.ApplyPushToken. The token
// is stored on the device under "<notifierID>.notifier.id" and the device
// is saved to the devices collection. A nil device reuses the device
// recorded in the credential store, or a new one.
func (c *Client) ApplyPushToken(
	ctx context.Context,
	device *usergrid.Device,
	pushToken, notifierID string,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	if notifierID == "" {
		return invalid(nil, ErrNotifierRequired)
	}

	if device == nil {
		id, err := c.persister.DeviceID(ctx)
		if err != nil {
			c.warn("failed to restore device", err)
		}

		device = usergrid.NewDevice(id)
	}

	err := device.Put(notifierID+constants.NotifierSuffix, pushToken)
	if err != nil {
		return invalid(nil, err)
	}

	resp, err := c.PutBody(ctx, constants.DevicesCollection, device.Properties(), opts...)
	mergeFirst(device, resp)

	if err == nil {
		c.persister.SaveDevice(ctx, device)
	}

	return resp, err
}
