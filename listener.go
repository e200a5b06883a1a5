package submux

import "github.com/arloliu/submux/types"

// listener adapts one entry to the transport's listener contract.
//
// One is registered per entry, possibly next to listeners of other entries
// on the same channel. It ignores events for any other channel.
type listener[E Entry[E]] struct {
	ps          *PubSub[E]
	entryName   string
	channelName string
	entry       E
}

func newListener[E Entry[E]](ps *PubSub[E], entryName, channelName string, entry E) *listener[E] {
	return &listener[E]{
		ps:          ps,
		entryName:   entryName,
		channelName: channelName,
		entry:       entry,
	}
}

// OnMessage forwards a message on the registered channel to the variant.
func (l *listener[E]) OnMessage(channel string, message any) bool {
	if channel != l.channelName {
		return false
	}

	l.ps.variant.OnMessage(l.entry, message)

	return true
}

// OnStatus completes the entry once its channel subscription is confirmed.
// Other statuses are left to the transport.
func (l *listener[E]) OnStatus(status types.Status, channel string) bool {
	if channel != l.channelName || status != types.StatusSubscribe {
		return false
	}

	l.entry.Promise().TrySucceed(l.entry)

	return true
}

// OnError fails the entry and retires it. The transport still holds the
// channel mutex when calling it.
func (l *listener[E]) OnError(channel string, err error) bool {
	if channel != l.channelName {
		return false
	}

	l.ps.subscribeFailed(l.entryName, l.channelName, l.entry, err)

	return true
}
