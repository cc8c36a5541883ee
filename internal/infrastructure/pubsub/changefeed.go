package pubsub

import "context"

// ChannelBetsChanged announces that the bets table changed. Payloads are
// advisory only; consumers recompute from storage rather than trusting them.
const ChannelBetsChanged = "bets:changed"

// ChangeFeed broadcasts change notifications between service components.
type ChangeFeed interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe delivers notifications to handler until ctx is cancelled.
	Subscribe(ctx context.Context, channel string, handler func(payload []byte))
}
