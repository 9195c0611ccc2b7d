package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventsDbName  = "traininginparks"
	EventsColName = "events"
)

var ErrEventNotFound = errors.New("event not found")

// RegistrationOutcome is the result of an attendee sign-up attempt.
type RegistrationOutcome int

const (
	Registered RegistrationOutcome = iota
	AlreadyRegistered
	EventNotFound
)

type EventRepo interface {
	// UpsertEvent inserts or updates the event keyed by its id. Scalar
	// fields are taken from the input; the attendee set of an existing
	// document is left untouched.
	UpsertEvent(ctx context.Context, event *Event) error
	// AddAttendee appends the username to the event's attendee set unless
	// it is already a member. The check and the append are a single
	// conditional update, so two concurrent calls for the same pair
	// cannot both observe Registered.
	AddAttendee(ctx context.Context, eventID, username string) (RegistrationOutcome, error)
	// ListUpcoming returns non-cancelled events starting at or after now,
	// ordered by start time ascending, capped at limit.
	ListUpcoming(ctx context.Context, limit int) ([]*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
}

func (mdb *MongodbRepo) UpsertEvent(ctx context.Context, event *Event) error {
	col, err := mdb.GetCollection(ctx, EventsDbName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"id": event.ID}
	update := bson.M{
		"$set": bson.M{
			"id":        event.ID,
			"summary":   event.Summary,
			"start":     event.Start,
			"end":       event.End,
			"status":    event.Status,
			"sequence":  event.Sequence,
			"etag":      event.Etag,
			"created":   event.Created,
			"updated":   event.Updated,
			"kind":      event.Kind,
			"ical_uid":  event.ICalUID,
			"html_link": event.HTMLLink,
			"organizer": event.Organizer,
			"creator":   event.Creator,
		},
		"$setOnInsert": bson.M{
			"attendees": bson.A{},
		},
	}

	_, err = col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error upserting event %s: %v", event.ID, err)
	}
	return nil
}

func (mdb *MongodbRepo) AddAttendee(ctx context.Context, eventID, username string) (RegistrationOutcome, error) {
	col, err := mdb.GetCollection(ctx, EventsDbName, EventsColName)
	if err != nil {
		return EventNotFound, fmt.Errorf("error getting collection: %v", err)
	}

	// The filter excludes documents that already contain the user, so the
	// match count tells the two outcomes apart without a prior read.
	filter := bson.M{"id": eventID, "attendees": bson.M{"$ne": username}}
	update := bson.M{"$addToSet": bson.M{"attendees": username}}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return EventNotFound, fmt.Errorf("error registering attendee: %v", err)
	}
	if res.MatchedCount == 1 {
		return Registered, nil
	}

	err = col.FindOne(ctx, bson.M{"id": eventID}).Err()
	if err == nil {
		return AlreadyRegistered, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return EventNotFound, nil
	}
	return EventNotFound, fmt.Errorf("error checking event %s: %v", eventID, err)
}

func (mdb *MongodbRepo) ListUpcoming(ctx context.Context, limit int) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"start":  bson.M{"$gte": mdb.now()},
		"status": bson.M{"$ne": StatusCancelled},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &event)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}

func (mdb *MongodbRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var event Event
	err = col.FindOne(ctx, bson.M{"id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event %s: %v", id, err)
	}
	return &event, nil
}
