package apiclient

import (
	"context"
	"fmt"
	"net/url"
)

// Resource is a create/read/update/delete proxy over one API group.
type Resource[T any] struct {
	client *Client
}

func NewResource[T any](client *Client) *Resource[T] {
	return &Resource[T]{client: client}
}

func (r *Resource[T]) Client() *Client { return r.client }

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	path := ""
	if len(query) > 0 {
		path = "?" + query.Encode()
	}
	var items []T
	if err := r.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: id is required", r.client.group)
	}
	var item T
	if err := r.client.Get(ctx, url.PathEscape(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, in any) (*T, error) {
	var item T
	if err := r.client.Post(ctx, "", in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Update(ctx context.Context, id string, in any) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: id is required", r.client.group)
	}
	var item T
	if err := r.client.Put(ctx, url.PathEscape(id), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%s: id is required", r.client.group)
	}
	return r.client.Delete(ctx, url.PathEscape(id), nil)
}
