package client

import (
	"context"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// NextPage implements usergrid.Client.NextPage. The next page is fetched
// with the same method and query as resp, with auth resolved again.
// Without a cursor nothing is sent.
func (c *Client) NextPage(ctx context.Context, resp *usergrid.Response, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	next, err := usergrid.NextPageRequest(resp)
	if err != nil {
		noNext := usergrid.NoNextPageResponse(resp)

		return noNext, noNext.Err()
	}

	return result(c.send(ctx, next, opts))
}

// SendNextPage implements usergrid.Client.SendNextPage. Without a cursor
// nothing is sent and completion receives the no_next_page response on the
// callback queue.
func (c *Client) SendNextPage(
	ctx context.Context,
	resp *usergrid.Response,
	completion func(*usergrid.Response),
	opts ...usergrid.CallOption,
) {
	next, err := usergrid.NextPageRequest(resp)
	if err != nil {
		if completion != nil {
			c.executor.Dispatch(func() { completion(usergrid.NoNextPageResponse(resp)) })
		}

		return
	}

	prepared := c.prepare(next, usergrid.ApplyCallOptions(opts...))

	c.executor.Send(ctx, prepared, func(raw *usergrid.RawResponse) {
		if completion != nil {
			completion(c.registry.ParseResponse(raw, prepared))
		}
	})
}

// Pages calls fn with resp and each following page until fn returns false,
// a page fails or there is no cursor.
func (c *Client) Pages(
	ctx context.Context,
	resp *usergrid.Response,
	fn func(*usergrid.Response) bool,
	opts ...usergrid.CallOption,
) error {
	for page := resp; ; {
		if !fn(page) || !page.HasNextPage() {
			return nil
		}

		next, err := c.NextPage(ctx, page, opts...)
		if err != nil {
			return err
		}

		page = next
	}
}
