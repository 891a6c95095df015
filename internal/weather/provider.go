package weather

import "context"

// Fetcher abstracts whatever answers weather requests: the proxy gateway in
// process, or an HTTP client talking to it.
type Fetcher interface {
	FetchWeather(ctx context.Context, req Request) (*Info, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (*Info, error)

func (f FetcherFunc) FetchWeather(ctx context.Context, req Request) (*Info, error) {
	return f(ctx, req)
}
