package iiko

import (
	"context"
	"time"
)

// EventTimeLayout is the timestamp format of the events API
const EventTimeLayout = "2006-01-02T15:04:05.000"

// EventsQuery selects events by time window and/or revision
type EventsQuery struct {
	From         *time.Time
	To           *time.Time
	FromRevision *int64
}

// GetEvents retrieves the event journal
func (c *Client) GetEvents(ctx context.Context, query EventsQuery) (*EventsList, error) {
	params := NewParams().
		AddTime("from_time", query.From, EventTimeLayout).
		AddTime("to_time", query.To, EventTimeLayout).
		AddInt("from_rev", query.FromRevision)

	body, err := c.Get(ctx, "events", params)
	if err != nil {
		return nil, err
	}

	var list EventsList
	if err := decodeXML(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetEventsByFilter retrieves events of the given types, optionally limited to order numbers
func (c *Client) GetEventsByFilter(ctx context.Context, eventTypes, orderNums []string) (*EventsList, error) {
	request := eventsRequest{Events: eventTypes}
	if len(orderNums) > 0 {
		request.OrderNums = &orderNumsFilter{Items: orderNums}
	}

	payload, err := encodeXML(request)
	if err != nil {
		return nil, err
	}

	body, err := c.Post(ctx, "events", payload, ContentTypeXML, nil)
	if err != nil {
		return nil, err
	}

	var list EventsList
	if err := decodeXML(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetEventMetadata retrieves the tree of event groups and types
func (c *Client) GetEventMetadata(ctx context.Context) ([]EventGroup, error) {
	body, err := c.Get(ctx, "events/metadata", nil)
	if err != nil {
		return nil, err
	}

	var wrapper eventGroups
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Groups, nil
}

// GetEventMetadataByFilter retrieves the event type tree limited to the given types
func (c *Client) GetEventMetadataByFilter(ctx context.Context, eventTypes []string) ([]EventGroup, error) {
	payload, err := encodeXML(eventsRequest{Events: eventTypes})
	if err != nil {
		return nil, err
	}

	body, err := c.Post(ctx, "events/metadata", payload, ContentTypeXML, nil)
	if err != nil {
		return nil, err
	}

	var wrapper eventGroups
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Groups, nil
}

// AddEvents stores events in the server journal and returns what the server saved
func (c *Client) AddEvents(ctx context.Context, events []Event) (*EventsList, error) {
	payload, err := encodeXML(EventsList{Events: events})
	if err != nil {
		return nil, err
	}

	body, err := c.Post(ctx, "events/add", payload, ContentTypeXML, nil)
	if err != nil {
		return nil, err
	}

	var list EventsList
	if err := decodeXML(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetCashSessions retrieves cash register shifts within the time window
func (c *Client) GetCashSessions(ctx context.Context, from, to *time.Time) ([]CashSession, error) {
	params := NewParams().
		AddTime("from_time", from, EventTimeLayout).
		AddTime("to_time", to, EventTimeLayout)

	body, err := c.Get(ctx, "events/sessions", params)
	if err != nil {
		return nil, err
	}

	var wrapper cashSessions
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Sessions, nil
}
