package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/pkg/enum"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/pubsub"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// Filter narrows the events of a subscription. Empty fields match everything.
type Filter struct {
	ChallengeID string `mapstructure:"challenge_id"`
	UserID      string `mapstructure:"user_id"`
	RecordID    string `mapstructure:"record_id"`
}

func (f Filter) Match(e Event) bool {
	if f.ChallengeID != "" && f.ChallengeID != e.ChallengeID {
		return false
	}

	if f.UserID != "" && !slices.Contains(e.UserIDs, f.UserID) {
		return false
	}

	if f.RecordID != "" && f.RecordID != e.RecordID {
		return false
	}

	return true
}

// Resync returns the event delivered when a subscription missed events, its consumer must
// refetch the whole collection.
func Resync(t EntityType) Event {
	return Event{Type: t, Op: OpUpsert}
}

// Subscription delivers matching events to its callback in order, from its own goroutine.
type Subscription struct {
	ID         string
	EntityType EntityType
	Filter     Filter

	c        chan Event
	done     chan struct{}
	lagged   atomic.Bool
	onChange func(Event)

	once       sync.Once
	reconciler *Reconciler
}

// Close stops the delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.reconciler.subscriptions.Delete(s.ID)
		common.PromGauges[common.RealtimeSubscriptions].WithLabelValues(string(s.EntityType)).Dec()
		close(s.done)
	})
}

// Done is closed once the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) push(e Event) {
	select {
	case <-s.done:
	case s.c <- e:
	default:
		s.lagged.Store(true)
	}
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.c:
			s.onChange(e)
		}

		// A dropped event leaves the consumer behind, one resync brings it back.
		if len(s.c) == 0 && s.lagged.CompareAndSwap(true, false) {
			s.onChange(Resync(s.EntityType))
		}
	}
}

// Reconciler fans change events out to live subscriptions.
type Reconciler struct {
	bufferSize    int
	subscriptions *xsync.MapOf[string, *Subscription]
}

func NewReconciler(bufferSize int) *Reconciler {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &Reconciler{
		bufferSize:    bufferSize,
		subscriptions: xsync.NewMapOf[*Subscription](),
	}
}

// Subscribe opens a subscription of entity type t. The subscription is closed when ctx is done or
// when Close is called, whichever comes first.
func (r *Reconciler) Subscribe(
	ctx context.Context, t EntityType, filter map[string]any, onChange func(Event),
) (*Subscription, error) {
	if !enum.IsValid(t) {
		return nil, errorx.New(errorx.BadRequest, "Invalid entity type %s", t)
	}

	var f Filter
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create filter decoder: %v", err)
		return nil, errorx.Unknown
	}

	if err := decoder.Decode(filter); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid filter: %v", err)
	}

	s := &Subscription{
		ID:         uuid.NewString(),
		EntityType: t,
		Filter:     f,
		c:          make(chan Event, r.bufferSize),
		done:       make(chan struct{}),
		onChange:   onChange,
		reconciler: r,
	}

	r.subscriptions.Store(s.ID, s)
	common.PromGauges[common.RealtimeSubscriptions].WithLabelValues(string(t)).Inc()

	go s.run()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Handle is the subscribe handler of the change topic.
func (r *Reconciler) Handle(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var e Event
	if err := json.Unmarshal(pack.Msg, &e); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal change event: %v", err)
		return
	}

	common.PromCounters[common.RealtimeEventTotal].WithLabelValues(string(e.Type), string(e.Op)).Inc()

	r.subscriptions.Range(func(_ string, s *Subscription) bool {
		if s.EntityType == e.Type && s.Filter.Match(e) {
			s.push(e)
		}
		return true
	})
}

// Len returns the number of open subscriptions.
func (r *Reconciler) Len() int {
	return r.subscriptions.Size()
}
