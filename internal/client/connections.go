package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Connect implements usergrid.ConnectionClient.Connect. toType may be
// empty when toUUIDOrName is a uuid.
func (c *Client) Connect(
	ctx context.Context,
	entityType, uuidOrName, relationship, toType, toUUIDOrName string,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	return c.connection(ctx, http.MethodPost, entityType, uuidOrName, relationship, toType, toUUIDOrName, opts)
}

// ConnectEntities implements usergrid.ConnectionClient.ConnectEntities.
func (c *Client) ConnectEntities(
	ctx context.Context,
	from usergrid.Entity,
	relationship string,
	to usergrid.Entity,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	return c.Connect(ctx, from.Type(), from.UUIDOrName(), relationship, to.Type(), to.UUIDOrName(), opts...)
}

// Disconnect implements usergrid.ConnectionClient.Disconnect.
func (c *Client) Disconnect(
	ctx context.Context,
	entityType, uuidOrName, relationship, toType, toUUIDOrName string,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	return c.connection(ctx, http.MethodDelete, entityType, uuidOrName, relationship, toType, toUUIDOrName, opts)
}

// DisconnectEntities implements usergrid.ConnectionClient.DisconnectEntities.
func (c *Client) DisconnectEntities(
	ctx context.Context,
	from usergrid.Entity,
	relationship string,
	to usergrid.Entity,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	return c.Disconnect(ctx, from.Type(), from.UUIDOrName(), relationship, to.Type(), to.UUIDOrName(), opts...)
}

// GetConnections implements usergrid.ConnectionClient.GetConnections.
func (c *Client) GetConnections(
	ctx context.Context,
	direction usergrid.Direction,
	entityType, uuidOrName, relationship string,
	query *usergrid.Query,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodGet,
		usergrid.WithPaths(entityType, uuidOrName, string(direction), relationship),
		usergrid.WithQuery(query))

	switch {
	case !validDirection(direction):
		return invalid(req, constants.ErrInvalidDirection)
	case entityType == "":
		return invalid(req, ErrEntityTypeRequired)
	case uuidOrName == "":
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	case relationship == "":
		return invalid(req, ErrRelationRequired)
	}

	return result(c.send(ctx, req, opts))
}

// GetConnectionsByUUID implements usergrid.ConnectionClient.GetConnectionsByUUID.
// A uuid is unique across collections, so no type is needed.
func (c *Client) GetConnectionsByUUID(
	ctx context.Context,
	direction usergrid.Direction,
	uuid, relationship string,
	query *usergrid.Query,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodGet,
		usergrid.WithPaths(uuid, string(direction), relationship),
		usergrid.WithQuery(query))

	switch {
	case !validDirection(direction):
		return invalid(req, constants.ErrInvalidDirection)
	case uuid == "":
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	case relationship == "":
		return invalid(req, ErrRelationRequired)
	}

	return result(c.send(ctx, req, opts))
}

func (c *Client) connection(
	ctx context.Context,
	method, entityType, uuidOrName, relationship, toType, toUUIDOrName string,
	opts []usergrid.CallOption,
) (*usergrid.Response, error) {
	req := c.newRequest(method, usergrid.WithPaths(entityType, uuidOrName, relationship, toType, toUUIDOrName))

	switch {
	case entityType == "":
		return invalid(req, ErrEntityTypeRequired)
	case uuidOrName == "" || toUUIDOrName == "":
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	case relationship == "":
		return invalid(req, ErrRelationRequired)
	}

	return result(c.send(ctx, req, opts))
}

func validDirection(direction usergrid.Direction) bool {
	return direction == usergrid.DirectionConnecting || direction == usergrid.DirectionConnections
}
