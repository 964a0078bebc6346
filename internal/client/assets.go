package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

const assetFormField = "file"

// UploadAsset implements usergrid.AssetClient.UploadAsset. The asset is
// sent as the single "file" part of a multipart form. On success the
// entity takes the server's properties, including its file metadata, and
// keeps asset locally.
func (c *Client) UploadAsset(
	ctx context.Context,
	entity usergrid.Entity,
	asset *usergrid.Asset,
	progress usergrid.ProgressFunc,
	opts ...usergrid.CallOption,
) (*usergrid.Response, error) {
	req := c.newRequest(http.MethodPost, usergrid.WithPaths(entity.Type(), entity.UUIDOrName()))
	if entity.UUIDOrName() == "" {
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	}

	body, contentType, err := multipartBody(asset)
	if err != nil {
		return invalid(req, err)
	}

	prepared, raw := c.sendWithProgress(ctx, req.With(usergrid.WithRawBody(body, contentType)), progress, opts)
	resp := c.registry.ParseResponse(raw, prepared)

	if resp.OK() && resp.Error == nil {
		mergeFirst(entity, resp)
		entity.Base().SetAsset(asset)
	}

	return result(resp)
}

// DownloadAsset implements usergrid.AssetClient.DownloadAsset. The body of
// a successful response is the asset data; it is attached to entity.
func (c *Client) DownloadAsset(
	ctx context.Context,
	entity usergrid.Entity,
	contentType string,
	progress usergrid.ProgressFunc,
	opts ...usergrid.CallOption,
) (*usergrid.Asset, error) {
	req := c.newRequest(http.MethodGet,
		usergrid.WithPaths(entity.Type(), entity.UUIDOrName()),
		usergrid.WithHeader("Accept", contentType))

	if !entity.Base().HasAsset() {
		_, err := invalid(req, ErrNoAsset)

		return nil, err
	}

	if entity.UUIDOrName() == "" {
		_, err := invalid(req, usergrid.ErrUUIDOrNameRequired)

		return nil, err
	}

	prepared, raw := c.sendWithProgress(ctx, req, progress, opts)
	if raw.Err != nil || raw.StatusCode >= http.StatusBadRequest {
		_, err := result(c.registry.ParseResponse(raw, prepared))

		return nil, err
	}

	asset := usergrid.NewAsset(entity.UUIDOrName(), raw.Body, contentType)
	entity.Base().SetAsset(asset)

	return asset, nil
}

func multipartBody(asset *usergrid.Asset) ([]byte, string, error) {
	if asset == nil {
		return nil, "", ErrNoAsset
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, assetFormField, asset.Filename))
	header.Set("Content-Type", asset.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating asset part: %w", err)
	}

	_, err = part.Write(asset.Data)
	if err != nil {
		return nil, "", fmt.Errorf("writing asset part: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
