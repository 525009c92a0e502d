package badger

import (
	"context"
	"errors"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// Options configures the Badger database backing the storefront repositories.
type Options struct {
	// Path is the on-disk directory for the store. Ignored when InMemory is set.
	Path string
	// InMemory keeps all data in process memory; used by tests.
	InMemory bool
	// Logger receives Badger's internal log output. Optional.
	Logger *zap.Logger
}

// Provider owns the shared Badger handle and its lifecycle.
type Provider struct {
	db *badgerdb.DB
}

// NewProvider opens the Badger database described by opts.
func NewProvider(opts Options) (*Provider, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("badger provider: store path is required")
	}

	dbOpts := badgerdb.DefaultOptions(opts.Path).WithInMemory(opts.InMemory)
	dbOpts = dbOpts.WithLogger(newBadgerLogger(opts.Logger))

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, wrapError("badger open", err)
	}
	return &Provider{db: db}, nil
}

// DB exposes the underlying handle to repositories in this package.
func (p *Provider) DB() *badgerdb.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Close releases the database handle.
func (p *Provider) Close(ctx context.Context) error {
	if p == nil || p.db == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrapError("badger close", p.db.Close())
}

// badgerLogger adapts zap to Badger's printf-style logging interface.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.Logger) badgerLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return badgerLogger{sugar: logger.Named("badger").Sugar()}
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.sugar.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.sugar.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.sugar.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.sugar.Debugf(format, args...) }
