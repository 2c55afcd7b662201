package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mongovc/mongovc/internal/engine"
	"github.com/mongovc/mongovc/internal/enginecache"
	"github.com/mongovc/mongovc/internal/store"
)

// engines caches the engine opened for each (uri, database, target) this
// process addresses, so push/pull's fixed lock-ordering step never ends up
// racing two independent lock managers over the same underlying record
// when the local and remote contexts happen to resolve to the same
// deployment and collection.
var engines = enginecache.New()

func engineCacheKey(sconf *store.Config, target string) string {
	return sconf.ConnectionURI + "/" + sconf.Database + "/" + target
}

// resolvedContext is a context's connection fields after --uri/--database/
// --target overrides have been layered on top of it.
type resolvedContext struct {
	name   string
	ctx    Context
	branch string
}

func resolveContext(cmd *cobra.Command) (resolvedContext, error) {
	name, ctx, err := currentContext(cmd)
	if err != nil {
		return resolvedContext{}, err
	}

	if v, _ := cmd.Flags().GetString("uri"); v != "" {
		ctx.URI = v
	}
	if v, _ := cmd.Flags().GetString("database"); v != "" {
		ctx.Database = v
	}
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		ctx.Target = v
	}
	if ctx.URI == "" || ctx.Database == "" || ctx.Target == "" {
		return resolvedContext{}, fmt.Errorf("context %q is missing uri, database or target", name)
	}

	return resolvedContext{name: name, ctx: ctx, branch: ctx.Branch}, nil
}

// storeConfig builds a store.Config from a resolved context, injecting
// credentials from --user/--password or VC_MONGO_USER/VC_MONGO_PASSWORD
// into the connection URI's userinfo, explicit flags taking priority over
// the environment per viper's bound-flag precedence.
func storeConfig(rc resolvedContext) (*store.Config, error) {
	conf := store.Default()
	conf.Database = rc.ctx.Database

	uri, err := withCredentials(rc.ctx.URI)
	if err != nil {
		return nil, err
	}
	conf.ConnectionURI = uri

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func withCredentials(rawURI string) (string, error) {
	user := viper.GetString("mongo-user")
	if user == "" {
		return rawURI, nil
	}
	password := viper.GetString("mongo-password")

	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("parse connection uri: %w", err)
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}

// dialEngine opens (but does not start the change listener for) the
// context a command targets.
func dialEngine(ctx context.Context, cmd *cobra.Command) (*engine.Engine, resolvedContext, error) {
	rc, err := resolveContext(cmd)
	if err != nil {
		return nil, resolvedContext{}, err
	}
	sconf, err := storeConfig(rc)
	if err != nil {
		return nil, resolvedContext{}, err
	}

	eng, err := engines.GetOrOpen(engineCacheKey(sconf, rc.ctx.Target), func() (*engine.Engine, error) {
		return engine.Open(ctx, sconf, rc.ctx.Target, engine.DefaultConfig())
	})
	if err != nil {
		return nil, resolvedContext{}, err
	}
	return eng, rc, nil
}

// openEngine dials the context a command targets and starts its change
// listener, so that any operation calling fence during this invocation has
// something consuming the change stream. Callers must defer Close. Init is
// the one operation that must not use this: it starts its own listener only
// once the collection is confirmed tracked.
func openEngine(ctx context.Context, cmd *cobra.Command) (*engine.Engine, resolvedContext, error) {
	eng, rc, err := dialEngine(ctx, cmd)
	if err != nil {
		return nil, resolvedContext{}, err
	}
	eng.Start()
	return eng, rc, nil
}

// openNamedEngine dials and starts the listener for an explicitly named
// context, ignoring --context/--uri/--database/--target: push and pull
// use this for the remote side, which is never the command's default
// context.
func openNamedEngine(ctx context.Context, name string) (*engine.Engine, resolvedContext, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, resolvedContext{}, err
	}
	c, ok := conf.Contexts[name]
	if !ok {
		return nil, resolvedContext{}, fmt.Errorf("unknown context %q", name)
	}
	rc := resolvedContext{name: name, ctx: c, branch: c.Branch}
	if rc.ctx.URI == "" || rc.ctx.Database == "" || rc.ctx.Target == "" {
		return nil, resolvedContext{}, fmt.Errorf("context %q is missing uri, database or target", name)
	}

	sconf, err := storeConfig(rc)
	if err != nil {
		return nil, resolvedContext{}, err
	}
	eng, err := engines.GetOrOpen(engineCacheKey(sconf, rc.ctx.Target), func() (*engine.Engine, error) {
		return engine.Open(ctx, sconf, rc.ctx.Target, engine.DefaultConfig())
	})
	if err != nil {
		return nil, resolvedContext{}, err
	}
	eng.Start()
	return eng, rc, nil
}
