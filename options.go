package shardstate

// Option configures a Manager with optional dependencies.
type Option func(*managerOptions)

// managerOptions holds optional Manager configuration.
type managerOptions struct {
	identityStore IdentityStore
	replRole      ReplicationRoleProvider
	catalogLoader RoleSink
	chunkSplitter RoleSink
	authorizer    Authorizer
	executorPool  Stopper
	catalogClient Stopper

	registryUpdateHook func(setName string, connStr ConnectionString)

	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	fatalFn func(msg string, keysAndValues ...any)
}

// WithIdentityStore sets a custom persisted identity store.
//
// Without this option, Bootstrap creates a NATS JetStream KV backed store
// using the configured bucket and key.
//
// Parameters:
//   - store: IdentityStore implementation
//
// Returns:
//   - Option: Functional option for NewManager
func WithIdentityStore(store IdentityStore) Option {
	return func(o *managerOptions) {
		o.identityStore = store
	}
}

// WithReplicationRoleProvider sets the local replication-role query used at
// initialization to decide primary-like vs secondary-like mode.
//
// Without this option the node is treated as primary-like (standalone).
func WithReplicationRoleProvider(provider ReplicationRoleProvider) Option {
	return func(o *managerOptions) {
		o.replRole = provider
	}
}

// WithCatalogLoaderRoleSink sets the catalog-cache loader that receives the
// primary-like flag at initialization.
func WithCatalogLoaderRoleSink(sink RoleSink) Option {
	return func(o *managerOptions) {
		o.catalogLoader = sink
	}
}

// WithChunkSplitterRoleSink sets the chunk splitter that receives the
// primary-like flag at initialization.
func WithChunkSplitterRoleSink(sink RoleSink) Option {
	return func(o *managerOptions) {
		o.chunkSplitter = sink
	}
}

// WithAuthorizer sets the gate for accepting externally supplied config-server
// metadata before the tracked config op-time may advance.
//
// Without this option all metadata is trusted.
func WithAuthorizer(authorizer Authorizer) Option {
	return func(o *managerOptions) {
		o.authorizer = authorizer
	}
}

// WithExecutorPool sets the task executor pool stopped during ShutDown.
func WithExecutorPool(pool Stopper) Option {
	return func(o *managerOptions) {
		o.executorPool = pool
	}
}

// WithCatalogClient sets the config-catalog client stopped during ShutDown.
func WithCatalogClient(client Stopper) Option {
	return func(o *managerOptions) {
		o.catalogClient = client
	}
}

// WithShardRegistryUpdateHook sets the synchronous topology hook invoked on
// the delivery goroutine for every replica-set membership change, used to keep
// a shard registry's record of member sets current.
//
// The hook must be cheap: it runs before the asynchronous persist path and
// blocks delivery of subsequent notifications.
func WithShardRegistryUpdateHook(hook func(setName string, connStr ConnectionString)) Option {
	return func(o *managerOptions) {
		o.registryUpdateHook = hook
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewManager
func WithHooks(hooks *Hooks) Option {
	return func(o *managerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *managerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
func WithLogger(logger Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithFatalHandler sets the handler invoked on a fatal consistency violation
// (a second bootstrap attempt presenting a different shard name, cluster ID,
// or config-server set name after initialization succeeded).
//
// The default handler is the logger's Fatal method, which terminates the
// process. Tests substitute a recording handler to observe the "would have
// aborted" condition without crashing the test binary.
func WithFatalHandler(fn func(msg string, keysAndValues ...any)) Option {
	return func(o *managerOptions) {
		o.fatalFn = fn
	}
}
