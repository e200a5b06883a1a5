// Package subscription implements the channel transport over NATS core pub/sub.
//
// Conn satisfies types.Transport: it owns the per-channel mutex pool, keeps one
// NATS subscription per channel no matter how many listeners share it, and
// confirms every SUB/UNSUB with a server round trip before reporting status.
//
// The mutex handed to Subscribe and Unsubscribe is released by Conn exactly
// once, after the command was confirmed or has failed. Listener callbacks for
// the command (status or error) run before that release.
//
// Basic usage:
//
//	conn, err := subscription.NewConn(nc, subscription.Config{})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close(ctx)
//
//	mu := conn.Mutex("orders")
//	mu.Acquire(func() {
//	    conn.Subscribe(codec.String, "orders", listener, mu)
//	})
package subscription
