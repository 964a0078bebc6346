package client

import (
	"context"
	"maps"
	"net/http"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Get implements usergrid.EntityClient.Get.
func (c *Client) Get(ctx context.Context, entityType, uuidOrName string, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodGet, usergrid.WithPaths(entityType, uuidOrName))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	if uuidOrName == "" {
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	}

	return result(c.send(ctx, req, opts))
}

// List implements usergrid.EntityClient.List.
func (c *Client) List(ctx context.Context, entityType string, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodGet, usergrid.WithPaths(entityType))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	return result(c.send(ctx, req, opts))
}

// Query implements usergrid.EntityClient.Query.
func (c *Client) Query(ctx context.Context, query *usergrid.Query, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.queryRequest(http.MethodGet, query)
	if query == nil || query.CollectionName() == "" {
		return invalid(req, usergrid.ErrCollectionRequired)
	}

	return result(c.send(ctx, req, opts))
}

// Put implements usergrid.EntityClient.Put.
func (c *Client) Put(
	ctx context.Context,
	entityType, uuidOrName string,
	body usergrid.Body,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodPut, usergrid.WithPaths(entityType, uuidOrName), usergrid.WithJSONBody(body))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	if uuidOrName == "" {
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	}

	return result(c.send(ctx, req, opts))
}

// PutBody implements usergrid.EntityClient.PutBody. The target is the
// uuid, or else the name, found in body.
func (c *Client) PutBody(ctx context.Context, entityType string, body usergrid.Body, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	return c.Put(ctx, entityType, uuidOrNameFromBody(body), body, opts...)
}

// PutEntity implements usergrid.EntityClient.PutEntity.
func (c *Client) PutEntity(ctx context.Context, entity usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	return c.PutBody(ctx, entity.Type(), entity.Properties(), opts...)
}

// PutQuery implements usergrid.EntityClient.PutQuery. Every entity matched
// by query receives body.
func (c *Client) PutQuery(ctx context.Context, query *usergrid.Query, body usergrid.Body, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.queryRequest(http.MethodPut, query).With(usergrid.WithJSONBody(body))
	if query == nil || query.CollectionName() == "" {
		return invalid(req, usergrid.ErrCollectionRequired)
	}

	return result(c.send(ctx, req, opts))
}

// Post implements usergrid.EntityClient.Post.
func (c *Client) Post(ctx context.Context, entityType string, body usergrid.Body, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodPost, usergrid.WithPaths(entityType), usergrid.WithJSONBody(body))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	return result(c.send(ctx, req, opts))
}

// PostNamed implements usergrid.EntityClient.PostNamed. body is not modified.
func (c *Client) PostNamed(
	ctx context.Context,
	entityType, name string,
	body usergrid.Body,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	named := make(usergrid.Body, len(body)+1)
	maps.Copy(named, body)
	named[usergrid.PropertyName] = name

	return c.Post(ctx, entityType, named, opts...)
}

// PostBodies implements usergrid.EntityClient.PostBodies.
func (c *Client) PostBodies(ctx context.Context, entityType string, bodies []usergrid.Body, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodPost, usergrid.WithPaths(entityType), usergrid.WithJSONBody(bodies))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	return result(c.send(ctx, req, opts))
}

// PostEntity implements usergrid.EntityClient.PostEntity.
func (c *Client) PostEntity(ctx context.Context, entity usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	return c.Post(ctx, entity.Type(), entity.Properties(), opts...)
}

// PostEntities implements usergrid.EntityClient.PostEntities. All entities
// are posted to the collection of the first one.
func (c *Client) PostEntities(ctx context.Context, entities []usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	if len(entities) == 0 {
		return invalid(nil, ErrNoEntities)
	}

	bodies := make([]usergrid.Body, 0, len(entities))
	for _, entity := range entities {
		bodies = append(bodies, entity.Properties())
	}

	return c.PostBodies(ctx, entities[0].Type(), bodies, opts...)
}

// Delete implements usergrid.EntityClient.Delete.
func (c *Client) Delete(ctx context.Context, entityType, uuidOrName string, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodDelete, usergrid.WithPaths(entityType, uuidOrName))
	if entityType == "" {
		return invalid(req, ErrEntityTypeRequired)
	}

	if uuidOrName == "" {
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	}

	return result(c.send(ctx, req, opts))
}

// DeleteEntity implements usergrid.EntityClient.DeleteEntity.
func (c *Client) DeleteEntity(ctx context.Context, entity usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	return c.Delete(ctx, entity.Type(), entity.UUIDOrName(), opts...)
}

// DeleteQuery implements usergrid.EntityClient.DeleteQuery.
func (c *Client) DeleteQuery(ctx context.Context, query *usergrid.Query, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	req := c.queryRequest(http.MethodDelete, query)
	if query == nil || query.CollectionName() == "" {
		return invalid(req, usergrid.ErrCollectionRequired)
	}

	return result(c.send(ctx, req, opts))
}

// Reload implements usergrid.EntityClient.Reload. On success the entity
// takes the server's properties.
func (c *Client) Reload(ctx context.Context, entity usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	resp, err := c.Get(ctx, entity.Type(), entity.UUIDOrName(), opts...)
	mergeFirst(entity, resp)

	return resp, err
}

// Save implements usergrid.EntityClient.Save: PUT when the entity has a
// uuid, POST otherwise.
func (c *Client) Save(ctx context.Context, entity usergrid.Entity, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	var (
		resp *usergrid.Response
		err  error
	)

	if entity.UUID() != "" {
		resp, err = c.PutEntity(ctx, entity, opts...)
	} else {
		resp, err = c.PostEntity(ctx, entity, opts...)
	}

	mergeFirst(entity, resp)

	return resp, err
}

func (c *Client) queryRequest(method string, query *usergrid.Query) *usergrid.Request {
	if query == nil {
		return c.newRequest(method)
	}

	return c.newRequest(method, usergrid.WithPaths(query.CollectionName()), usergrid.WithQuery(query))
}

func uuidOrNameFromBody(body usergrid.Body) string {
	if id, ok := body[usergrid.PropertyUUID].(string); ok && id != "" {
		return id
	}

	name, _ := body[usergrid.PropertyName].(string)

	return name
}
