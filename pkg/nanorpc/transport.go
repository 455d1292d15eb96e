package nanorpc

import "context"

// Response is what a Transport got back for one request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport sends one JSON request body to url.
type Transport interface {
	Send(ctx context.Context, url string, body []byte) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url string, body []byte) (*Response, error)

func (f TransportFunc) Send(ctx context.Context, url string, body []byte) (*Response, error) {
	return f(ctx, url, body)
}
