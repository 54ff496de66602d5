package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicVoucherApplied  = "voucher.applied"
	TopicVoucherCleared  = "voucher.cleared"
	TopicCartCreated     = "cart.created"
	TopicUserRegistered  = "user.registered"
	TopicShippingChanged = "cart.shipping_changed"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicVoucherApplied,
		TopicVoucherCleared,
		TopicCartCreated,
		TopicUserRegistered,
		TopicShippingChanged,
	}
}
