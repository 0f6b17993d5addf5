package realtime

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
)

type GatewayAction string

const (
	SubscribeAction   GatewayAction = "subscribe"
	UnsubscribeAction GatewayAction = "unsubscribe"
)

type GatewayRequest struct {
	Action         GatewayAction  `json:"action"`
	EntityType     EntityType     `json:"entity_type"`
	Filter         map[string]any `json:"filter"`
	SubscriptionID string         `json:"subscription_id"`
}

type GatewayResponse struct {
	SubscriptionID string `json:"subscription_id,omitempty"`
	Event          *Event `json:"event,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Gateway exposes the reconciler to websocket clients. Every subscription of a connection is
// closed when the connection ends.
type Gateway struct {
	reconciler *Reconciler
}

func NewGateway(reconciler *Reconciler) *Gateway {
	return &Gateway{reconciler: reconciler}
}

func (g *Gateway) Serve(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan GatewayResponse, xcontext.Configs(ctx).Realtime.BufferSize+1)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case resp := <-out:
				if err := conn.WriteJSON(resp); err != nil {
					xcontext.Logger(ctx).Debugf("Cannot write to websocket: %v", err)
					return
				}
			}
		}
	}()

	send := func(resp GatewayResponse) {
		select {
		case <-ctx.Done():
		case out <- resp:
		}
	}

	subscriptions := map[string]*Subscription{}
	for {
		var req GatewayRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				xcontext.Logger(ctx).Debugf("Websocket closed: %v", err)
			}
			return nil
		}

		switch req.Action {
		case SubscribeAction:
			var s *Subscription
			ready := make(chan struct{})
			s, err := g.reconciler.Subscribe(ctx, req.EntityType, g.scope(ctx, req), func(e Event) {
				<-ready
				send(GatewayResponse{SubscriptionID: s.ID, Event: &e})
			})
			if err != nil {
				send(GatewayResponse{Error: errorMessage(err)})
				continue
			}

			subscriptions[s.ID] = s
			send(GatewayResponse{SubscriptionID: s.ID})
			close(ready)

		case UnsubscribeAction:
			if s, ok := subscriptions[req.SubscriptionID]; ok {
				s.Close()
				delete(subscriptions, req.SubscriptionID)
			}

		default:
			send(GatewayResponse{Error: "unknown action"})
		}
	}
}

// scope restricts private entity types to the records of the connected user.
func (g *Gateway) scope(ctx context.Context, req GatewayRequest) map[string]any {
	filter := map[string]any{}
	for k, v := range req.Filter {
		filter[k] = v
	}

	if req.EntityType == FriendRequestEntity || req.EntityType == FriendshipEntity {
		filter["user_id"] = xcontext.RequestUserID(ctx)
	}

	return filter
}

func errorMessage(err error) string {
	var errx errorx.Error
	if errors.As(err, &errx) {
		return errx.Message
	}
	return errorx.Unknown.Message
}
