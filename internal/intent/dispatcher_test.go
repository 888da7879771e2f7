package intent

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstead/pantryd/internal/bring"
	"github.com/greenstead/pantryd/internal/compose"
	"github.com/greenstead/pantryd/internal/reconcile"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()

	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1, // random port
		NoLog:  true,
		NoSigs: true,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

// memGateway is an in-memory bring.Client recording mutations.
type memGateway struct {
	mu            sync.Mutex
	items         []bring.Item
	currentErr    error
	addCalls      []string
	consumedCalls []string
}

func (g *memGateway) CurrentItems(ctx context.Context) ([]bring.Item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentErr != nil {
		return nil, g.currentErr
	}
	return append([]bring.Item(nil), g.items...), nil
}

func (g *memGateway) AddItem(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addCalls = append(g.addCalls, name)
	return nil
}

func (g *memGateway) MarkConsumed(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.consumedCalls = append(g.consumedCalls, name)
	return nil
}

func testNames() Names {
	return Names{Add: "addItem", Remove: "delItem", Check: "checkList", Read: "readList"}
}

// startDispatcher wires a full dispatcher against the embedded broker and
// returns the connection plus a channel of endSession replies.
func startDispatcher(t *testing.T, gw *memGateway) (*nats.Conn, chan *nats.Msg) {
	t.Helper()

	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	set := testSet()
	composer := compose.New(set.List, rand.New(rand.NewSource(1)))
	handlers := NewHandlers(reconcile.NewService(gw, nil), set, composer, nil)

	d := NewDispatcher(nc, handlers, testNames(), set, nil)
	require.NoError(t, d.Start())
	t.Cleanup(func() { _ = d.Drain() })

	replies := make(chan *nats.Msg, 4)
	_, err = nc.ChanSubscribe(endSessionSubject, replies)
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	return nc, replies
}

func publishIntent(t *testing.T, nc *nats.Conn, name string, in *Intent) {
	t.Helper()
	in.Intent = Ref{Name: name}
	payload, err := json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, nc.Publish(intentSubjectPrefix+name, payload))
}

func awaitReply(t *testing.T, replies chan *nats.Msg) EndSession {
	t.Helper()
	select {
	case msg := <-replies:
		var end EndSession
		require.NoError(t, json.Unmarshal(msg.Data, &end))
		return end
	case <-time.After(5 * time.Second):
		t.Fatal("no endSession reply received")
		return EndSession{}
	}
}

func TestDispatcher_AddIntent_EndToEnd(t *testing.T) {
	gw := &memGateway{items: []bring.Item{{Name: "milk"}}}
	nc, replies := startDispatcher(t, gw)

	publishIntent(t, nc, "addItem", itemsIntent("milk", "eggs"))
	end := awaitReply(t, replies)

	assert.Equal(t, "session-1", end.SessionID)
	// eggs was added, milk reported as already present, in one sentence.
	assert.Equal(t, "added eggs, but milk already there", end.Text)
	assert.Equal(t, []string{"eggs"}, gw.addCalls, "exactly one add mutation")
	assert.Empty(t, gw.consumedCalls)
}

func TestDispatcher_RemoveIntent_NothingOnList(t *testing.T) {
	gw := &memGateway{}
	nc, replies := startDispatcher(t, gw)

	publishIntent(t, nc, "delItem", itemsIntent("eggs"))
	end := awaitReply(t, replies)

	assert.Equal(t, "eggs not there", end.Text)
	assert.Empty(t, gw.addCalls)
	assert.Empty(t, gw.consumedCalls, "no mutation for absent names")
}

func TestDispatcher_ReadIntent(t *testing.T) {
	gw := &memGateway{items: []bring.Item{{Name: "milk"}, {Name: "eggs"}}}
	nc, replies := startDispatcher(t, gw)

	publishIntent(t, nc, "readList", itemsIntent())
	end := awaitReply(t, replies)

	assert.Equal(t, "you have milk and eggs", end.Text)
}

func TestDispatcher_EmptySlots_FallbackWithoutGateway(t *testing.T) {
	gw := &memGateway{}
	nc, replies := startDispatcher(t, gw)

	publishIntent(t, nc, "checkList", itemsIntent())
	end := awaitReply(t, replies)

	assert.Equal(t, "what do you want?", end.Text)
}

func TestDispatcher_GatewayFailure_EndsSessionWithErrorPhrase(t *testing.T) {
	gw := &memGateway{currentErr: &bring.TransportError{Op: "current_items", StatusCode: 503, Message: "down"}}
	nc, replies := startDispatcher(t, gw)

	publishIntent(t, nc, "addItem", itemsIntent("milk"))
	end := awaitReply(t, replies)

	assert.Equal(t, "list unreachable", end.Text)
	assert.Empty(t, gw.addCalls)
}

// Each subscription delivers on its own goroutine, so intents published
// to two subjects back to back reach the dispatcher concurrently. The
// dispatcher must serialize them: both sessions get their deterministic
// reply, and the shared phrase source is never drawn from by two
// goroutines at once (the race detector catches a regression here).
func TestDispatcher_ConcurrentIntentsAreSerialized(t *testing.T) {
	gw := &memGateway{items: []bring.Item{{Name: "milk"}}}
	nc, replies := startDispatcher(t, gw)

	const rounds = 50
	for i := 0; i < rounds; i++ {
		publishIntent(t, nc, "addItem", itemsIntent("eggs"))
		publishIntent(t, nc, "checkList", itemsIntent("milk"))

		got := map[string]bool{
			awaitReply(t, replies).Text: true,
			awaitReply(t, replies).Text: true,
		}
		assert.Equal(t, map[string]bool{
			"added eggs.":       true,
			"milk on the list.": true,
		}, got)
	}

	assert.Len(t, gw.addCalls, rounds)
	assert.Empty(t, gw.consumedCalls)
}

func TestDispatcher_MalformedPayloadIsDropped(t *testing.T) {
	gw := &memGateway{}
	nc, replies := startDispatcher(t, gw)

	require.NoError(t, nc.Publish(intentSubjectPrefix+"addItem", []byte("{not json")))
	require.NoError(t, nc.Flush())

	select {
	case msg := <-replies:
		t.Fatalf("unexpected reply to malformed payload: %s", msg.Data)
	case <-time.After(300 * time.Millisecond):
	}
}
