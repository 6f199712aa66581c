// Package bus is the in-process broadcast transport between the scroll
// driver and the card-stack animator.
//
// The bus is fire-and-forget fan-out. Publish stamps each message with a
// monotonic sequence number and hands every subscriber its own copy of the
// payload, so no two components ever share a buffer.
//
// Delivery is synchronous: handlers run on the publisher's goroutine before
// Publish returns. Handlers must not block. A component that wants its own
// event loop subscribes with a Mailbox and drains it from a single goroutine:
//
//	mb := bus.NewMailbox()
//	sub := b.Subscribe(wire.TopicScrollProposal, mb.Enqueue)
//	defer sub.Unsubscribe()
//	for {
//	    select {
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    case <-mb.Wait():
//	        for env, ok := mb.TryDequeue(); ok; env, ok = mb.TryDequeue() {
//	            handle(env)
//	        }
//	    }
//	}
//
// SubscribeOnce installs a one-shot subscription: the first envelope its
// filter accepts is delivered, then the subscription removes itself. Later
// envelopes are never seen, which is how late replies get dropped.
package bus
