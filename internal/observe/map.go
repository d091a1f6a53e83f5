package observe

import "context"

// Map derives an Observable whose value is fn applied to the latest value
// of src. The derived state follows src until ctx is done.
func Map[T any, U comparable](ctx context.Context, src Observable[T], fn func(T) U) Observable[U] {
	dst := New(fn(src.Get()))
	updates := src.Subscribe(ctx)
	go func() {
		for v := range updates {
			dst.Set(fn(v))
		}
	}()
	return dst
}
