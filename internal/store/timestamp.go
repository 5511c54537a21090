package store

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TimeLayout is the stored text form of a Time: UTC, fixed width, millisecond
// precision, so documents in the JSON backends sort by it as plain strings.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time is a document timestamp. It is a BSON datetime in MongoDB and a TimeLayout
// string in JSON.
type Time struct {
	time.Time
}

// Timestamp normalizes t for storage: UTC, truncated to the millisecond that a BSON
// datetime can hold.
func Timestamp(t time.Time) Time {
	return Time{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Time{}
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339Nano+`"`, string(b))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Time) MarshalBSONValue() (byte, []byte, error) {
	typ, data, err := bson.MarshalValue(t.Time)
	return byte(typ), data, err
}

func (t *Time) UnmarshalBSONValue(typ byte, data []byte) error {
	var parsed time.Time
	if err := bson.UnmarshalValue(bson.Type(typ), data, &parsed); err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// ParseTimestamp reads a client-supplied created_at. Empty input means now; zone-less
// input is taken as UTC.
func ParseTimestamp(raw string, now func() time.Time) (Time, error) {
	if raw == "" {
		return Timestamp(now()), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp(t), nil
		}
	}
	return Time{}, fmt.Errorf("invalid created_at %q", raw)
}
