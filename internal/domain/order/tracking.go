package order

import (
	"sort"
	"time"
)

// TrackingEventType names a step of the delivery timeline
type TrackingEventType string

const (
	EventLabelCreated                  TrackingEventType = "LABEL_CREATED"
	EventShipmentPicked                TrackingEventType = "SHIPMENT_PICKED"
	EventPackageReceivedAtFacility     TrackingEventType = "PACKAGE_RECEIVED_AT_FACILITY"
	EventPackageLeftFacility           TrackingEventType = "PACKAGE_LEFT_FACILITY"
	EventPackageArrivedAtLocalFacility TrackingEventType = "PACKAGE_ARRIVED_AT_LOCAL_FACILITY"
	EventOutForDelivery                TrackingEventType = "OUT_FOR_DELIVERY"
	EventDelivered                     TrackingEventType = "DELIVERED"
)

// Sequence numbers of the status-driven events
const (
	SequenceOutForDelivery = 6
	SequenceDelivered      = 7
)

// TrackingEvent is an append-only timeline row
type TrackingEvent struct {
	ID          int64
	OrderID     int64
	EventType   TrackingEventType
	Description string
	Location    string
	Sequence    int
	OccurredAt  time.Time
}

// IsNew reports whether the event has not been persisted yet
func (e TrackingEvent) IsNew() bool {
	return e.ID == 0
}

type cannedStep struct {
	eventType   TrackingEventType
	description string
	location    string
}

var initialSteps = []cannedStep{
	{EventLabelCreated, "Label created", "Warehouse"},
	{EventShipmentPicked, "Shipment picked up", "Warehouse"},
	{EventPackageReceivedAtFacility, "Package received at sorting facility", "Sorting Center"},
	{EventPackageLeftFacility, "Package left sorting facility", "Sorting Center"},
	{EventPackageArrivedAtLocalFacility, "Package arrived at local facility", "Local Hub"},
}

// InitialTimeline returns the five canned events created with every order,
// sequence N occurring N hours after base.
func InitialTimeline(base time.Time) []TrackingEvent {
	events := make([]TrackingEvent, 0, len(initialSteps))
	for i, step := range initialSteps {
		seq := i + 1
		events = append(events, TrackingEvent{
			EventType:   step.eventType,
			Description: step.description,
			Location:    step.location,
			Sequence:    seq,
			OccurredAt:  base.Add(time.Duration(seq) * time.Hour),
		})
	}
	return events
}

// StatusTrackingEvent returns the event appended when an order reaches
// OUT_FOR_DELIVERY or DELIVERED. Other statuses produce none.
func StatusTrackingEvent(o *Order, status OrderStatus, at time.Time) (TrackingEvent, bool) {
	switch status {
	case StatusOutForDelivery:
		return TrackingEvent{
			OrderID:     o.ID,
			EventType:   EventOutForDelivery,
			Description: "Out for delivery",
			Location:    "Local Hub",
			Sequence:    SequenceOutForDelivery,
			OccurredAt:  at,
		}, true
	case StatusDelivered:
		location := o.Contact.Address
		if location == "" {
			location = "Delivery Location"
		}
		return TrackingEvent{
			OrderID:     o.ID,
			EventType:   EventDelivered,
			Description: "Delivered",
			Location:    location,
			Sequence:    SequenceDelivered,
			OccurredAt:  at,
		}, true
	}
	return TrackingEvent{}, false
}

// SortTimeline returns a copy of events ordered by sequence, then time
func SortTimeline(events []TrackingEvent) []TrackingEvent {
	out := make([]TrackingEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}
