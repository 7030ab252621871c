package apitest

import "context"

type bodyKey struct{}

func withBody(ctx context.Context, body Record) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) Record {
	body, _ := ctx.Value(bodyKey{}).(Record)
	if body == nil {
		return Record{}
	}
	return body
}
