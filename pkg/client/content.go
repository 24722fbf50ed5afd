package client

import (
	"context"
	"net/http"
	"strconv"
)

// ContentClient covers one kind of admin-managed content.
type ContentClient[T any] struct {
	c    *Client
	path string
}

// List returns all rows, or only the publicly visible ones when activeOnly.
func (cc *ContentClient[T]) List(ctx context.Context, activeOnly bool, opts ...CallOption) ([]T, error) {
	path := cc.path
	if activeOnly {
		path += "?active=true"
	}
	var out []T
	if err := cc.c.do(ctx, http.MethodGet, path, nil, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc *ContentClient[T]) Get(ctx context.Context, id int64, opts ...CallOption) (*T, error) {
	var out T
	if err := cc.c.do(ctx, http.MethodGet, cc.path+"/"+strconv.FormatInt(id, 10), nil, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *ContentClient[T]) Create(ctx context.Context, item *T, opts ...CallOption) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := cc.c.do(ctx, http.MethodPost, cc.path, item, &out, opts...); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (cc *ContentClient[T]) Update(ctx context.Context, id int64, item *T, opts ...CallOption) error {
	return cc.c.do(ctx, http.MethodPut, cc.path+"/"+strconv.FormatInt(id, 10), item, nil, opts...)
}

func (cc *ContentClient[T]) Delete(ctx context.Context, id int64, opts ...CallOption) error {
	return cc.c.do(ctx, http.MethodDelete, cc.path+"/"+strconv.FormatInt(id, 10), nil, nil, opts...)
}
