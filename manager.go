package shardstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/shardstate/internal/hooks"
	"github.com/arloliu/shardstate/internal/identity"
	"github.com/arloliu/shardstate/internal/kvutil"
	"github.com/arloliu/shardstate/internal/logging"
	"github.com/arloliu/shardstate/internal/metrics"
	"github.com/arloliu/shardstate/internal/natsutil"
	"github.com/arloliu/shardstate/internal/processid"
	"github.com/arloliu/shardstate/internal/topology"
	"github.com/arloliu/shardstate/types"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Manager is the per-node sharding membership state machine.
//
// Manager is the main entry point of the shardstate library. It owns:
//   - The lifecycle state (New → Initialized, or New → Error)
//   - The shard identity record, once installed
//   - The migration admission registry
//   - The replica-set topology-change hooks for the config server's set
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Enabled and CanAcceptShardedCommands are lock-free atomic reads; they
//     are per-operation hot paths and never contend on a lock
//   - The internal mutex is never held across I/O; only the coarse init lock
//     spans the one-time global-initialization callback
//
// Lifecycle:
//   - Create with NewManager()
//   - Call Bootstrap() once at startup (or InitializeFromIdentity() when an
//     identity document is first written)
//   - Call ShutDown() during process teardown
type Manager struct {
	cfg        Config
	conn       *nats.Conn
	globalInit GlobalInitFunc

	// Collaborators (all optional, injected via options)
	identityStore      IdentityStore
	replRole           ReplicationRoleProvider
	catalogLoader      RoleSink
	chunkSplitter      RoleSink
	authorizer         Authorizer
	executorPool       Stopper
	catalogClient      Stopper
	registryUpdateHook func(setName string, connStr ConnectionString)

	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	fatalFn func(msg string, keysAndValues ...any)

	registry *MigrationRegistry

	// Hot-path state tag, read lock-free on every sharded operation.
	state atomic.Int32 // LifecycleState

	// Tracked config-catalog op-time, advanced monotonically from metadata.
	configOpTime atomic.Int64

	// initMu is the coarse bootstrap lock: it serializes first-time
	// initialization end to end, including the global-init callback, so
	// concurrent bootstrap attempts collapse into a single winner.
	initMu sync.Mutex

	// mu guards the fields below. Held only for in-memory updates, never
	// across I/O or network calls.
	mu       sync.Mutex
	identity ShardIdentity
	initErr  error
	watcher  *topology.Watcher
	shutdown bool

	// Lifecycle management
	ctx       context.Context
	cancel    context.CancelFunc
	createdAt time.Time
}

// StatusInfo is the diagnostic snapshot produced by AppendInfo.
type StatusInfo struct {
	Enabled      bool   `json:"enabled"`
	ConfigServer string `json:"configServer,omitempty"`
	ShardName    string `json:"shardName,omitempty"`
	ClusterID    string `json:"clusterId,omitempty"`
}

// NewManager creates a new Manager instance with the provided configuration.
//
// Returns a concrete *Manager struct following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for testing.
//
// Parameters:
//   - cfg: Runtime configuration
//   - conn: NATS connection for the identity store and topology notifications
//   - globalInit: One-time global-initialization callback (§external setup);
//     invoked at most once per process lifetime
//   - opts: Optional configuration (collaborators, hooks, metrics, logger)
//
// Returns:
//   - *Manager: Initialized manager instance in state New
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := shardstate.Config{ClusterRole: shardstate.RoleShardServer}
//	mgr, err := shardstate.NewManager(&cfg, natsConn, globalInit,
//	    shardstate.WithLogger(logger),
//	)
func NewManager(cfg *Config, conn *nats.Conn, globalInit GlobalInitFunc, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if conn == nil {
		return nil, ErrNATSConnectionRequired
	}
	if globalInit == nil {
		return nil, ErrGlobalInitRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &managerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	fatalFn := options.fatalFn
	if fatalFn == nil {
		fatalFn = loggerInstance.Fatal
	}

	m := &Manager{
		cfg:                *cfg,
		conn:               conn,
		globalInit:         globalInit,
		identityStore:      options.identityStore,
		replRole:           options.replRole,
		catalogLoader:      options.catalogLoader,
		chunkSplitter:      options.chunkSplitter,
		authorizer:         options.authorizer,
		executorPool:       options.executorPool,
		catalogClient:      options.catalogClient,
		registryUpdateHook: options.registryUpdateHook,
		hooks:              hooksInstance,
		metrics:            metricsCollector,
		logger:             loggerInstance,
		fatalFn:            fatalFn,
		createdAt:          time.Now(),
	}

	m.registry = NewMigrationRegistry(loggerInstance, metricsCollector)
	m.state.Store(int32(StateNew))
	m.ctx, m.cancel = context.WithCancel(context.Background())

	return m, nil
}

// Enabled returns true iff the lifecycle state is Initialized.
//
// Lock-free; safe to call on every sharded operation.
func (m *Manager) Enabled() bool {
	return LifecycleState(m.state.Load()) == StateInitialized
}

// State returns the current lifecycle state.
func (m *Manager) State() LifecycleState {
	return LifecycleState(m.state.Load())
}

// CanAcceptShardedCommands reports whether sharded commands may proceed.
//
// Returns:
//   - error: ErrNotAShardServer when the process lacks the shard-server role;
//     ErrNotInitialized when configured but not yet Initialized; nil otherwise
func (m *Manager) CanAcceptShardedCommands() error {
	if m.cfg.ClusterRole != RoleShardServer {
		return ErrNotAShardServer
	}
	if !m.Enabled() {
		return ErrNotInitialized
	}

	return nil
}

// ShardName returns this shard's name ("" before initialization).
func (m *Manager) ShardName() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.identity.ShardName
}

// ClusterID returns the cluster identifier ("" before initialization).
func (m *Manager) ClusterID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.identity.ClusterID
}

// ConfigServer returns the config catalog's connection string.
func (m *Manager) ConfigServer() ConnectionString {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.identity.ConfigServer
}

// InitializeFromIdentity is the idempotent convergence point of the lifecycle.
//
// The first successful call performs the one-time global initialization and
// transitions New → Initialized; later calls with a matching identity are
// no-ops. A mismatching identity after successful initialization is a fatal
// consistency violation reported through the fatal handler. A failed first
// call is permanent: every later call short-circuits with
// ErrManualInterventionRequired until the process restarts.
//
// The coarse init lock is held end to end, spanning the global-init callback
// (the only I/O performed under any lock in this package); the fine-grained
// mutex is released around it.
//
// Parameters:
//   - ctx: Context for the global-init callback
//   - shardIdentity: The identity to converge on
//
// Returns:
//   - error: Validation error, the global-init failure, or
//     ErrManualInterventionRequired wrapping the original cause
func (m *Manager) InitializeFromIdentity(ctx context.Context, shardIdentity ShardIdentity) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if err := shardIdentity.Validate(); err != nil {
		return fmt.Errorf("invalid shard identity presented when initializing sharding state: %w", err)
	}

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()

		return ErrShutDown
	}

	switch LifecycleState(m.state.Load()) {
	case StateInitialized:
		prev := m.identity
		m.mu.Unlock()
		m.verifyIdentityConsistency(prev, shardIdentity)

		return nil

	case StateError:
		cause := m.initErr
		m.mu.Unlock()

		return fmt.Errorf("%w: caused by: %w", ErrManualInterventionRequired, cause)

	case StateNew:
		// First-time initialization, fall through.
	}
	m.mu.Unlock()

	m.logger.Info("initializing sharding state", "identity", shardIdentity.String())

	// initMu serializes callers here; mu is deliberately not held across the
	// callback, which may perform network I/O.
	distLockProcessID := processid.Generate()
	if err := m.globalInit(ctx, shardIdentity.ConfigServer, distLockProcessID); err != nil {
		m.logger.Error("failed to initialize sharding components", "error", err)
		m.recordInitFailure(shardIdentity, err)

		return err
	}

	// Install the replica-set topology-change hooks: the synchronous shard
	// registry update on the delivery goroutine, the config-string persist on
	// its own goroutine.
	watcher := topology.New(m.conn, m.cfg.TopologySubject, m.syncTopologyHook(), m.asyncTopologyHook(), m.logger)
	if err := watcher.Start(); err != nil {
		err = fmt.Errorf("failed to install topology change hooks: %w", err)
		m.logger.Error("failed to initialize sharding components", "error", err)
		m.recordInitFailure(shardIdentity, err)

		return err
	}

	// Determine the local replication role so sharding components start in
	// the right mode.
	primaryLike := true
	if m.replRole != nil {
		primaryLike = m.replRole.IsPrimaryLike(ctx)
	}
	if m.catalogLoader != nil {
		m.catalogLoader.SetPrimaryLike(primaryLike)
	}
	if m.chunkSplitter != nil {
		m.chunkSplitter.SetPrimaryLike(primaryLike)
	}

	nodeRole := "secondary"
	if primaryLike {
		nodeRole = "primary"
	}
	m.logger.Info("initialized sharding components", "node_role", nodeRole)

	m.mu.Lock()
	m.identity = shardIdentity
	m.watcher = watcher
	m.mu.Unlock()

	m.transitionState(StateNew, StateInitialized)

	if m.hooks.OnIdentityInstalled != nil {
		go func() {
			if err := m.hooks.OnIdentityInstalled(m.ctx, shardIdentity); err != nil {
				m.logError("identity installed hook error", "error", err)
			}
		}()
	}

	return nil
}

// verifyIdentityConsistency checks a repeat bootstrap attempt against the
// installed identity. Any mismatch of shard name, cluster ID, or config set
// name means the process cannot safely continue.
func (m *Manager) verifyIdentityConsistency(installed, presented ShardIdentity) {
	switch {
	case installed.ShardName != presented.ShardName:
		m.fatalFn("shard identity mismatch after initialization",
			"field", "shardName",
			"installed", installed.ShardName,
			"presented", presented.ShardName,
		)
	case installed.ClusterID != presented.ClusterID:
		m.fatalFn("shard identity mismatch after initialization",
			"field", "clusterId",
			"installed", installed.ClusterID,
			"presented", presented.ClusterID,
		)
	case installed.ConfigServer.SetName != presented.ConfigServer.SetName:
		m.fatalFn("shard identity mismatch after initialization",
			"field", "configServerSetName",
			"installed", installed.ConfigServer.SetName,
			"presented", presented.ConfigServer.SetName,
		)
	default:
		m.logger.Debug("sharding state already initialized with matching identity",
			"shard_name", installed.ShardName,
		)
	}
}

// recordInitFailure records a permanent initialization failure.
//
// The presented identity is still stored for diagnostics, matching the
// convention that AppendInfo and logs can name the shard that failed.
func (m *Manager) recordInitFailure(shardIdentity ShardIdentity, cause error) {
	m.mu.Lock()
	m.identity = shardIdentity
	m.initErr = cause
	m.mu.Unlock()

	m.transitionState(StateNew, StateError)
}

// transitionState transitions to a new state and triggers hooks.
func (m *Manager) transitionState(from, to LifecycleState) {
	if !isValidTransition(from, to) {
		m.logError("invalid lifecycle state transition attempted",
			"from", from.String(),
			"to", to.String(),
		)

		return
	}

	m.state.Store(int32(to))

	m.logger.Info("lifecycle state transition",
		"from", from.String(),
		"to", to.String(),
	)

	// Trigger state change hook in background to avoid blocking the caller
	if m.hooks.OnStateChanged != nil {
		go func() {
			if err := m.hooks.OnStateChanged(m.ctx, from, to); err != nil {
				m.logError("state change hook error", "from", from, "to", to, "error", err)
			}
		}()
	}

	m.metrics.RecordStateTransition(from, to, time.Since(m.createdAt).Seconds())
}

// isValidTransition validates that a lifecycle transition is allowed.
func isValidTransition(from, to LifecycleState) bool {
	// Initialized and Error are terminal.
	if from != StateNew {
		return false
	}

	return to == StateInitialized || to == StateError
}

// UpdateShardIdentityConfigString persists a new config-server connection
// string into the identity record's durable form.
//
// The "document no longer exists" case is tolerated with a warning: the shard
// may have been removed from the cluster, and for the background
// topology-change caller that is not an error condition.
//
// Parameters:
//   - ctx: Context for the store operation
//   - configServer: The config server's new connection string
//
// Returns:
//   - error: Storage-layer errors, unchanged
func (m *Manager) UpdateShardIdentityConfigString(ctx context.Context, configServer ConnectionString) error {
	store, err := m.ensureIdentityStore(ctx)
	if err != nil {
		return err
	}

	if err := store.UpdateConfigString(ctx, configServer); err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			m.logger.Warn("failed to update config string of shard identity document because " +
				"it does not exist; this shard could have been removed from the cluster")

			return nil
		}

		return err
	}

	m.logger.Debug("updated config server connection string in shard identity document",
		"config_server", configServer.String(),
	)

	if m.hooks.OnConfigStringUpdated != nil {
		go func() {
			if err := m.hooks.OnConfigStringUpdated(m.ctx, configServer); err != nil {
				m.logError("config string updated hook error", "error", err)
			}
		}()
	}

	return nil
}

// AdvanceConfigOpTimeFromMetadata advances the tracked config-catalog op-time
// from inbound config-server metadata.
//
// A no-op before initialization. When an authorizer is configured, callers
// without cluster-internal privileges get ErrUnauthorized and the op-time does
// not move. The op-time only ever advances; stale metadata is ignored.
func (m *Manager) AdvanceConfigOpTimeFromMetadata(ctx context.Context, opTime int64) error {
	if !m.Enabled() {
		// Nothing to do if sharding state has not been initialized.
		return nil
	}

	if m.authorizer != nil && !m.authorizer.IsAuthorizedForClusterInternal(ctx) {
		return ErrUnauthorized
	}

	for {
		cur := m.configOpTime.Load()
		if opTime <= cur {
			return nil
		}
		if m.configOpTime.CompareAndSwap(cur, opTime) {
			return nil
		}
	}
}

// ConfigOpTime returns the highest config-catalog op-time observed so far.
func (m *Manager) ConfigOpTime() int64 {
	return m.configOpTime.Load()
}

// AppendInfo produces a structured snapshot for status-reporting tooling.
func (m *Manager) AppendInfo() StatusInfo {
	if !m.Enabled() {
		return StatusInfo{Enabled: false}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return StatusInfo{
		Enabled:      true,
		ConfigServer: m.identity.ConfigServer.String(),
		ShardName:    m.identity.ShardName,
		ClusterID:    m.identity.ClusterID,
	}
}

// ShutDown stops the topology watcher and signals the executor pool and
// catalog client collaborators to stop and join. Idempotent; a no-op beyond
// bookkeeping if the manager never became enabled.
func (m *Manager) ShutDown(ctx context.Context) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()

		return
	}
	m.shutdown = true
	watcher := m.watcher
	m.mu.Unlock()

	m.cancel()

	if !m.Enabled() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, m.cfg.ShutdownTimeout)
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			m.logError("failed to stop topology watcher", "error", err)
		}
	}

	if m.executorPool != nil {
		if err := m.executorPool.StopAndJoin(shutdownCtx); err != nil {
			m.logError("failed to stop executor pool", "error", err)
		}
	}

	if m.catalogClient != nil {
		if err := m.catalogClient.StopAndJoin(shutdownCtx); err != nil {
			m.logError("failed to stop catalog client", "error", err)
		}
	}

	m.logger.Info("sharding state shut down", "shard_name", m.ShardName())
}

// SetEnabledForTest forces the Initialized state with the given shard name,
// bypassing global initialization. Test seam only.
func (m *Manager) SetEnabledForTest(shardName string) {
	m.mu.Lock()
	m.identity.ShardName = shardName
	m.mu.Unlock()

	m.state.Store(int32(StateInitialized))
}

// Migration admission delegation.

// RegisterDonateChunk registers the outbound side of a chunk migration.
// See MigrationRegistry.RegisterDonateChunk.
func (m *Manager) RegisterDonateChunk(req MoveChunkRequest) (*ScopedDonateChunk, error) {
	return m.registry.RegisterDonateChunk(req)
}

// RegisterReceiveChunk registers the inbound side of a chunk migration.
// See MigrationRegistry.RegisterReceiveChunk.
func (m *Manager) RegisterReceiveChunk(ns Namespace, chunkRange ChunkRange, fromShard string) (*ScopedReceiveChunk, error) {
	return m.registry.RegisterReceiveChunk(ns, chunkRange, fromShard)
}

// RegisterMovePrimary registers a primary-shard move.
// See MigrationRegistry.RegisterMovePrimary.
func (m *Manager) RegisterMovePrimary(req MovePrimaryRequest) (*ScopedMovePrimary, error) {
	return m.registry.RegisterMovePrimary(req)
}

// ActiveDonateChunkNamespace returns the namespace currently being donated.
func (m *Manager) ActiveDonateChunkNamespace() (Namespace, bool) {
	return m.registry.ActiveDonateChunkNamespace()
}

// ActiveMovePrimaryNamespace returns the database whose primary is moving.
func (m *Manager) ActiveMovePrimaryNamespace() (Namespace, bool) {
	return m.registry.ActiveMovePrimaryNamespace()
}

// ActiveMigrationStatusReport renders the held migration slots.
func (m *Manager) ActiveMigrationStatusReport() MigrationStatusReport {
	return m.registry.ActiveMigrationStatusReport()
}

// Internal plumbing.

// ensureIdentityStore lazily creates the NATS KV backed identity store.
// Creation happens outside the fine-grained mutex; it performs network I/O.
func (m *Manager) ensureIdentityStore(ctx context.Context) (IdentityStore, error) {
	m.mu.Lock()
	if m.identityStore != nil {
		store := m.identityStore
		m.mu.Unlock()

		return store, nil
	}
	m.mu.Unlock()

	js, err := jetstream.New(m.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:  m.cfg.KVBuckets.IdentityBucket,
		History: 1, // Keep only latest value
	}, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to create/open identity KV bucket: %w", err)
	}

	created := identity.NewStore(kv, m.cfg.KVBuckets.IdentityKey, m.logger, m.metrics)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identityStore == nil {
		m.identityStore = created
	}

	return m.identityStore, nil
}

// syncTopologyHook adapts the injected shard-registry update hook for the
// topology watcher ("" when none was injected).
func (m *Manager) syncTopologyHook() topology.Hook {
	if m.registryUpdateHook == nil {
		return nil
	}

	return func(setName string, connStr types.ConnectionString) {
		m.registryUpdateHook(setName, connStr)
	}
}

// asyncTopologyHook returns the background config-string persist path.
func (m *Manager) asyncTopologyHook() topology.Hook {
	return func(setName string, connStr types.ConnectionString) {
		m.handleTopologyChange(setName, connStr)
	}
}

// handleTopologyChange runs on a goroutine not associated with any request.
//
// Changes to sets other than the config server's are ignored. "Not primary"
// class failures are expected transient noise while a secondary observes the
// change; anything else is logged for the operator.
func (m *Manager) handleTopologyChange(setName string, connStr ConnectionString) {
	m.mu.Lock()
	configSetName := m.identity.ConfigServer.SetName
	m.mu.Unlock()

	matched := setName == configSetName
	m.metrics.RecordTopologyNotification(matched)
	if !matched {
		return
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.OperationTimeout)
	defer cancel()

	err := m.UpdateShardIdentityConfigString(ctx, connStr)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotPrimary):
		m.logger.Debug("skipping config string update, node is not primary", "set_name", setName)
	case natsutil.IsConnectivityError(err):
		m.logger.Warn("connectivity issue while trying to update config connection string",
			"config_server", connStr.String(),
			"error", err,
		)
	default:
		m.logger.Warn("error encountered while trying to update config connection string",
			"config_server", connStr.String(),
			"error", err,
		)
	}
}

// logError logs an error message.
func (m *Manager) logError(msg string, keysAndValues ...any) {
	// Logger is always non-nil (defaults to nop)
	m.logger.Error(msg, keysAndValues...)
}
