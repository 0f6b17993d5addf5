package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fatih/structs"
	"github.com/questx-lab/habit/pkg/enum"
	"github.com/questx-lab/habit/pkg/pubsub"
	"github.com/questx-lab/habit/pkg/xcontext"
)

// Topic carries every change event.
const Topic = "habit.changes"

type EntityType string

var (
	ParticipationEntity = enum.New(EntityType("participation"))
	CommentEntity       = enum.New(EntityType("comment"))
	CommentLikeEntity   = enum.New(EntityType("comment_like"))
	FriendRequestEntity = enum.New(EntityType("friend_request"))
	FriendshipEntity    = enum.New(EntityType("friendship"))
)

type Op string

var (
	OpUpsert = enum.New(Op("upsert"))
	OpDelete = enum.New(Op("delete"))
)

// Event tells that one record changed. Record is the new client representation of the record, it
// may be empty, in which case consumers refetch.
type Event struct {
	Type        EntityType     `json:"type"`
	Op          Op             `json:"op"`
	RecordID    string         `json:"record_id"`
	ChallengeID string         `json:"challenge_id,omitempty"`
	UserIDs     []string       `json:"user_ids,omitempty"`
	Version     int64          `json:"version"`
	Record      map[string]any `json:"record,omitempty"`
}

// NewEvent builds an upsert event of record, which must be a struct with json tags.
func NewEvent(t EntityType, recordID string, version time.Time, record any) Event {
	e := Event{
		Type:     t,
		Op:       OpUpsert,
		RecordID: recordID,
		Version:  version.UnixNano(),
	}

	if record != nil {
		s := structs.New(record)
		s.TagName = "json"
		e.Record = s.Map()
	}

	return e
}

func NewDeleteEvent(t EntityType, recordID string, version time.Time) Event {
	return Event{
		Type:     t,
		Op:       OpDelete,
		RecordID: recordID,
		Version:  version.UnixNano(),
	}
}

func (e Event) WithChallenge(challengeID string) Event {
	e.ChallengeID = challengeID
	return e
}

func (e Event) WithUsers(userIDs ...string) Event {
	e.UserIDs = append(e.UserIDs, userIDs...)
	return e
}

// Notifier publishes change events after a mutation is committed.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type notifier struct {
	publisher pubsub.Publisher
}

func NewNotifier(publisher pubsub.Publisher) *notifier {
	return &notifier{publisher: publisher}
}

// Notify never fails the caller, the mutation is already persisted and subscribers converge on the
// next change.
func (n *notifier) Notify(ctx context.Context, event Event) {
	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", event.Type, err)
		return
	}

	err = n.publisher.Publish(ctx, Topic, &pubsub.Pack{Key: []byte(event.RecordID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event of %s: %v", event.Type, event.RecordID, err)
	}
}
