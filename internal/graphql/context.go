package graphql

import "context"

// RequestInfo is the request-scoped transport data resolvers and the
// authorization guard read: bearer credential and sender address.
type RequestInfo struct {
	Authorization string
	RemoteIP      string
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
