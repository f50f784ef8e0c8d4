package enums

// DomainEvent identifies the event types flowing through the events topic.
type DomainEvent string

const (
	EventOrderCreated       DomainEvent = "order.created"
	EventOrderStatusChanged DomainEvent = "order.status_changed"
	EventQuoteCreated       DomainEvent = "quote.created"
)

// String implements fmt.Stringer.
func (e DomainEvent) String() string {
	return string(e)
}
