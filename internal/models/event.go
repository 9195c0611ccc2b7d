package models

import (
	"time"
)

// Moscow is the fixed offset every time comparison and every user-facing
// timestamp uses. The calendar feed is maintained in this offset.
var Moscow = time.FixedZone("UTC+3", 3*60*60)

const StatusCancelled = "cancelled"

// Event is one scheduled training session mirrored from the calendar feed.
// It is validated once, at the normalization boundary; everything downstream
// may assume the required fields are present.
type Event struct {
	ID       string    `bson:"id" json:"id" validate:"required"`
	Summary  string    `bson:"summary" json:"summary" validate:"required"`
	Start    time.Time `bson:"start" json:"start" validate:"required"`
	End      time.Time `bson:"end" json:"end" validate:"required,gtefield=Start"`
	Status   string    `bson:"status" json:"status" validate:"required"`
	Sequence int64     `bson:"sequence" json:"sequence"`
	Etag     string    `bson:"etag" json:"etag" validate:"required"`
	Created  time.Time `bson:"created" json:"created" validate:"required"`
	Updated  time.Time `bson:"updated" json:"updated" validate:"required"`

	// Provenance copied verbatim from the feed, never interpreted.
	Kind      string `bson:"kind,omitempty" json:"kind,omitempty"`
	ICalUID   string `bson:"ical_uid,omitempty" json:"ical_uid,omitempty"`
	HTMLLink  string `bson:"html_link,omitempty" json:"html_link,omitempty"`
	Organizer string `bson:"organizer,omitempty" json:"organizer,omitempty"`
	Creator   string `bson:"creator,omitempty" json:"creator,omitempty"`

	// Attendees holds chat usernames, each at most once. The sync path
	// never writes this field.
	Attendees []string `bson:"attendees" json:"attendees"`
}

// Cancelled reports whether the source calendar has cancelled the event.
// Cancelled events stay in the store but are hidden from listings.
func (e *Event) Cancelled() bool {
	return e.Status == StatusCancelled
}
