package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"round/internal/auth"
)

const assetA = "2b7c5b38-1d0e-4a6e-9a51-7f8d7c1f0a11"

type mockVerifier struct {
	claims auth.Claims
	err    error
}

func (m mockVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if m.err != nil {
		return auth.Claims{}, m.err
	}
	if strings.TrimSpace(token) == "" {
		return auth.Claims{}, errors.New("missing token")
	}
	return m.claims, nil
}

func TestWSMissingTokenUnauthorized(t *testing.T) {
	t.Parallel()

	srv := NewServer(NewHub(), mockVerifier{claims: auth.Claims{Subject: "user-1"}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("http get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWSInvalidTokenUnauthorized(t *testing.T) {
	t.Parallel()

	srv := NewServer(NewHub(), mockVerifier{err: errors.New("invalid")})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "?token=bad")
	if err != nil {
		t.Fatalf("http get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWSSubscribeAndUnsubscribeFlow(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, conn := dialTestServer(t, hub, "user-1")

	send(t, ctx, conn, clientMessage{Type: "subscribe", Scope: "dashboard"})
	subscribed := receive(t, ctx, conn)
	if subscribed.Type != "subscribed" || subscribed.Scope != "dashboard" {
		t.Fatalf("unexpected subscribed response: %+v", subscribed)
	}

	sessionID := singleSessionID(t, hub)
	if sub, _ := hub.Snapshot(sessionID); !sub.Dashboard {
		t.Fatal("expected dashboard subscription to be enabled")
	}

	send(t, ctx, conn, clientMessage{Type: "subscribe", Scope: "asset", AssetID: assetA})
	if got := receive(t, ctx, conn); got.Type != "subscribed" || got.AssetID != assetA {
		t.Fatalf("unexpected asset subscribed response: %+v", got)
	}
	if sub, _ := hub.Snapshot(sessionID); !hasAsset(sub, assetA) {
		t.Fatal("expected asset to be subscribed")
	}

	send(t, ctx, conn, clientMessage{Type: "unsubscribe", Scope: "asset", AssetID: assetA})
	unsubscribed := receive(t, ctx, conn)
	if unsubscribed.Type != "unsubscribed" || unsubscribed.Scope != "asset" {
		t.Fatalf("unexpected unsubscribed response: %+v", unsubscribed)
	}
	if sub, _ := hub.Snapshot(sessionID); hasAsset(sub, assetA) {
		t.Fatal("expected asset to be removed from subscriptions")
	}

	send(t, ctx, conn, clientMessage{Type: "unsubscribe", Scope: "dashboard"})
	receive(t, ctx, conn)
	if sub, _ := hub.Snapshot(sessionID); sub.Dashboard {
		t.Fatal("expected dashboard subscription to be disabled")
	}
}

func TestWSInvalidMessages(t *testing.T) {
	t.Parallel()

	ctx, conn := dialTestServer(t, NewHub(), "user-1")

	cases := []struct {
		msg  clientMessage
		want string
	}{
		{clientMessage{Type: "subscribe", Scope: "asset"}, "asset_id"},
		{clientMessage{Type: "subscribe", Scope: "asset", AssetID: "42"}, "asset_id"},
		{clientMessage{Type: "subscribe", Scope: "portfolio"}, "unsupported scope"},
		{clientMessage{Type: "ping"}, "unsupported message type"},
	}
	for _, tc := range cases {
		send(t, ctx, conn, tc.msg)
		got := receive(t, ctx, conn)
		if got.Type != "error" || !strings.Contains(got.Message, tc.want) {
			t.Fatalf("expected %q error for %+v, got %+v", tc.want, tc.msg, got)
		}
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("failed writing malformed message: %v", err)
	}
	if got := receive(t, ctx, conn); got.Type != "error" || got.Message != "invalid message" {
		t.Fatalf("expected invalid message error, got %+v", got)
	}
}

func TestWSAssetChangesReachSubscribedOwner(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, conn := dialTestServer(t, hub, "user-1")

	send(t, ctx, conn, clientMessage{Type: "subscribe", Scope: "asset", AssetID: assetA})
	receive(t, ctx, conn)

	if queued := hub.NotifyAsset("user-2", assetA, ChangeUpdated); queued != 0 {
		t.Fatalf("expected other user's change to be ignored, queued=%d", queued)
	}
	if queued := hub.NotifyAsset("user-1", "d0c4b1f2-0000-4000-8000-000000000000", ChangeUpdated); queued != 0 {
		t.Fatalf("expected unwatched asset to be ignored, queued=%d", queued)
	}
	if queued := hub.NotifyAsset("user-1", assetA, ChangeValued); queued != 1 {
		t.Fatalf("expected one session to be notified, queued=%d", queued)
	}

	got := receive(t, ctx, conn)
	if got.Type != "asset_changed" || got.AssetID != assetA || got.Change != ChangeValued {
		t.Fatalf("unexpected change event: %+v", got)
	}
}

func TestWSAssetSubscriptionCanonicalizesID(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, conn := dialTestServer(t, hub, "user-1")

	send(t, ctx, conn, clientMessage{Type: "subscribe", Scope: "asset", AssetID: " " + strings.ToUpper(assetA) + " "})
	ack := receive(t, ctx, conn)
	if ack.Type != "subscribed" || ack.AssetID != assetA {
		t.Fatalf("expected canonical asset id in ack, got %+v", ack)
	}
	if sub, ok := hub.Snapshot(singleSessionID(t, hub)); !ok || !hasAsset(sub, assetA) {
		t.Fatalf("expected canonical asset subscription, got %+v", sub)
	}

	if queued := hub.NotifyAsset("user-1", assetA, ChangeUpdated); queued != 1 {
		t.Fatalf("expected subscribed session to be notified, queued=%d", queued)
	}
	got := receive(t, ctx, conn)
	if got.Type != "asset_changed" || got.AssetID != assetA {
		t.Fatalf("unexpected change event: %+v", got)
	}

	send(t, ctx, conn, clientMessage{Type: "unsubscribe", Scope: "asset", AssetID: "{" + assetA + "}"})
	receive(t, ctx, conn)
	if queued := hub.NotifyAsset("user-1", assetA, ChangeUpdated); queued != 0 {
		t.Fatalf("expected braced unsubscribe to remove the subscription, queued=%d", queued)
	}
}

func TestHubDropsEventsForSlowSessions(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	events, err := hub.Add("session-1", "user-1")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	hub.SubscribeDashboard("session-1")

	for i := 0; i < sessionBuffer; i++ {
		if queued := hub.NotifyAsset("user-1", assetA, ChangeUpdated); queued != 1 {
			t.Fatalf("expected event %d to queue, got %d", i, queued)
		}
	}
	if queued := hub.NotifyAsset("user-1", assetA, ChangeUpdated); queued != 0 {
		t.Fatalf("expected full buffer to drop, got %d", queued)
	}
	if len(events) != sessionBuffer {
		t.Fatalf("expected %d buffered events, got %d", sessionBuffer, len(events))
	}

	hub.Remove("session-1")
	for range events {
	}
	if _, ok := hub.Snapshot("session-1"); ok {
		t.Fatal("expected session to be removed")
	}
}

func TestHubRejectsDuplicateSessions(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	if _, err := hub.Add("session-1", "user-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := hub.Add("session-1", "user-1"); err == nil {
		t.Fatal("expected duplicate session error")
	}
	if _, err := hub.Add("", "user-1"); err == nil {
		t.Fatal("expected missing session id error")
	}
}

func TestRequestTokenFromBearerHeader(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if got := requestToken(req); got != "abc" {
		t.Fatalf("expected bearer token, got %q", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if got := requestToken(req); got != "q" {
		t.Fatalf("expected query token to win, got %q", got)
	}
}

func dialTestServer(t *testing.T, hub *Hub, userID string) (context.Context, *websocket.Conn) {
	t.Helper()

	srv := NewServer(hub, mockVerifier{claims: auth.Claims{Subject: userID}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "?token=good"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })

	ready := receive(t, ctx, conn)
	if ready.Type != "ready" || ready.UserID != userID {
		t.Fatalf("unexpected ready message: %+v", ready)
	}
	return ctx, conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, msg clientMessage) {
	t.Helper()
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("failed writing %s message: %v", msg.Type, err)
	}
}

func receive(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("failed reading message: %v", err)
	}
	return msg
}

func hasAsset(sub Subscriber, assetID string) bool {
	_, ok := sub.AssetIDs[assetID]
	return ok
}

func singleSessionID(t *testing.T, hub *Hub) string {
	t.Helper()

	ids := hub.SessionIDs()
	if len(ids) != 1 {
		t.Fatalf("expected exactly one subscriber session, got %d", len(ids))
	}
	return ids[0]
}
