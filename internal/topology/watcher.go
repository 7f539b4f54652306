// Package topology delivers replica-set membership-change notifications.
//
// Notifications arrive on a NATS subject as JSON documents naming the changed
// set and its full member list. The watcher fans each notification out to a
// synchronous hook (invoked on the delivery goroutine, for cheap in-memory
// registry updates) and an asynchronous hook (invoked on its own goroutine,
// for work that may perform I/O such as persisting a new config-server
// connection string).
package topology

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arloliu/shardstate/internal/logging"
	"github.com/arloliu/shardstate/types"
	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v4"
)

// DefaultSubject is the subject replica-set monitors publish changes on.
const DefaultSubject = "shardstate.topology.changes"

// ChangeNotification is the wire form of one membership change.
type ChangeNotification struct {
	// SetName is the replica set whose membership changed.
	SetName string `json:"setName"`

	// ConnectionString is the set's new full address list, in the canonical
	// "setName/host,host" form.
	ConnectionString string `json:"connectionString"`
}

// Hook receives one parsed membership change.
type Hook func(setName string, connStr types.ConnectionString)

// Watcher subscribes to membership-change notifications and dispatches hooks.
type Watcher struct {
	conn    *nats.Conn
	subject string
	logger  types.Logger

	syncHook  Hook
	asyncHook Hook

	// lastSeen tracks the most recent connection string per set name for
	// diagnostics. Written by the delivery goroutine, read by anyone.
	lastSeen *xsync.Map[string, string]

	mu   sync.Mutex
	sub  *nats.Subscription
	wg   sync.WaitGroup
	done chan struct{}
}

// New creates a watcher. Hooks may be nil; nil hooks are skipped.
//
// Parameters:
//   - conn: NATS connection to subscribe on
//   - subject: Notification subject ("" uses DefaultSubject)
//   - syncHook: Invoked on the delivery goroutine for every notification
//   - asyncHook: Invoked on a background goroutine for every notification
//   - logger: Logger (nil uses a nop logger)
//
// Returns:
//   - *Watcher: New watcher, not yet started
func New(conn *nats.Conn, subject string, syncHook, asyncHook Hook, logger types.Logger) *Watcher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Watcher{
		conn:      conn,
		subject:   subject,
		logger:    logger,
		syncHook:  syncHook,
		asyncHook: asyncHook,
		lastSeen:  xsync.NewMap[string, string](),
		done:      make(chan struct{}),
	}
}

// Start subscribes to the notification subject.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sub != nil {
		return nil // Already started
	}

	sub, err := w.conn.Subscribe(w.subject, w.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topology changes on %s: %w", w.subject, err)
	}
	w.sub = sub
	w.logger.Debug("topology watcher started", "subject", w.subject)

	return nil
}

// Stop unsubscribes and waits for in-flight async hooks to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()

	if sub == nil {
		return nil
	}

	close(w.done)

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe topology watcher: %w", err)
	}
	w.wg.Wait()

	return nil
}

// LastSeen returns the most recent connection string observed for a set.
//
// Returns:
//   - string: Canonical connection string ("" if the set was never seen)
//   - bool: Whether the set was seen at all
func (w *Watcher) LastSeen(setName string) (string, bool) {
	return w.lastSeen.Load(setName)
}

// Snapshot returns a copy of the last-seen connection string per set name.
func (w *Watcher) Snapshot() map[string]string {
	out := make(map[string]string)
	w.lastSeen.Range(func(set, connStr string) bool {
		out[set] = connStr

		return true
	})

	return out
}

// handle runs on the NATS delivery goroutine.
func (w *Watcher) handle(msg *nats.Msg) {
	var note ChangeNotification
	if err := json.Unmarshal(msg.Data, &note); err != nil {
		w.logger.Error("failed to decode topology change notification", "error", err)

		return
	}

	connStr, err := types.ParseConnectionString(note.ConnectionString)
	if err != nil {
		w.logger.Error("malformed connection string in topology change notification",
			"set_name", note.SetName,
			"error", err,
		)

		return
	}

	w.lastSeen.Store(note.SetName, connStr.String())

	if w.syncHook != nil {
		w.syncHook(note.SetName, connStr)
	}

	if w.asyncHook != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			select {
			case <-w.done:
				return
			default:
			}
			w.asyncHook(note.SetName, connStr)
		}()
	}
}
