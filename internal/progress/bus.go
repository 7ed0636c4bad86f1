package progress

import (
	"sync"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/log"
)

// Bus fans progress events out to subscriber channels. A channel is a
// logical observer (for example one browser tab) and may hold several
// transport connections; the channel is dropped when its last connection
// goes away.
type Bus struct {
	mu       sync.RWMutex
	channels map[string]map[Connection]struct{}
	closed   bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		channels: make(map[string]map[Connection]struct{}),
	}
}

// Subscribe attaches conn to channelID. Subscribing the same channel
// again adds a connection; it never replaces the channel.
func (b *Bus) Subscribe(channelID string, conn Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	set, ok := b.channels[channelID]
	if !ok {
		set = make(map[Connection]struct{})
		b.channels[channelID] = set
	}
	set[conn] = struct{}{}
	log.Debug(log.CatBus, "subscriber attached", "channel", channelID, "connections", len(set))
}

// Unsubscribe detaches one connection. When the channel's connection set
// becomes empty the channel is deleted.
func (b *Bus) Unsubscribe(channelID string, conn Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(channelID, conn)
}

func (b *Bus) removeLocked(channelID string, conn Connection) {
	set, ok := b.channels[channelID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(b.channels, channelID)
	}
}

// Publish broadcasts event to every connection of every channel.
// A send failure removes only the failing connection and never blocks
// or fails the publish. Publishing with zero subscribers is a no-op.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	b.deliver(event, func(channelID string) bool { return true })
}

// PublishTo delivers event only to the connections of channelID.
// Unknown channels are ignored: personal delivery is best-effort.
func (b *Bus) PublishTo(channelID string, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	b.deliver(event, func(id string) bool { return id == channelID })
}

type target struct {
	channelID string
	conn      Connection
}

func (b *Bus) deliver(event Event, match func(channelID string) bool) {
	// Snapshot targets so sends happen outside the lock and a failing
	// connection can be removed while others are still being served.
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	var targets []target
	for channelID, set := range b.channels {
		if !match(channelID) {
			continue
		}
		for conn := range set {
			targets = append(targets, target{channelID: channelID, conn: conn})
		}
	}
	b.mu.RUnlock()

	for _, t := range targets {
		if err := t.conn.Send(event); err != nil {
			log.Warn(log.CatBus, "dropping failed connection",
				"channel", t.channelID, "jobID", event.JobID, "error", err.Error())
			b.mu.Lock()
			b.removeLocked(t.channelID, t.conn)
			b.mu.Unlock()
		}
	}
}

// ConnectionCount returns the number of live connections on a channel.
func (b *Bus) ConnectionCount(channelID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channelID])
}

// ChannelCount returns the number of live channels.
func (b *Bus) ChannelCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels)
}

// Close drops all channels; subsequent publishes and subscribes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.channels = nil
}
