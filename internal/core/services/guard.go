package services

import (
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/srgjo27/cinema_client/internal/platform/logger"
)

const (
	LoginRoute    = "login"
	LoginPath     = "/login"
	RedirectParam = "redirect"
)

type RouteMeta struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

type Route struct {
	Name     string
	FullPath string
	Meta     RouteMeta
}

type Redirect struct {
	Name  string
	Path  string
	Query url.Values
}

func (r *Redirect) Location() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Decision is the outcome of a guard check; a nil Redirect lets the
// navigation through.
type Decision struct {
	Redirect *Redirect
}

func (d Decision) Allowed() bool {
	return d.Redirect == nil
}

type Guard struct {
	store   *Store
	limiter *rate.Limiter
	log     *logrus.Entry
}

type GuardOption func(*Guard)

// WithBootstrapEvery throttles guard-triggered bootstraps to one per period.
func WithBootstrapEvery(period time.Duration) GuardOption {
	return func(g *Guard) {
		if period > 0 {
			g.limiter = rate.NewLimiter(rate.Every(period), 1)
		}
	}
}

func WithGuardLogger(log *logrus.Logger) GuardOption {
	return func(g *Guard) {
		g.log = logger.Component(log, "guard")
	}
}

func NewGuard(store *Store, opts ...GuardOption) *Guard {
	g := &Guard{
		store: store,
		log:   logger.Component(nil, "guard"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Before runs ahead of every navigation.
func (g *Guard) Before(to Route) Decision {
	user := g.store.CurrentUser()

	if to.Meta.RequiresAdmin && !user.IsAdmin() {
		return g.toLogin(to, "admin required")
	}

	if to.Meta.RequiresAuth && user == nil {
		return g.toLogin(to, "authentication required")
	}

	if g.store.CatalogIdle() {
		if g.limiter == nil || g.limiter.Allow() {
			g.store.BootstrapAsync()
		}
	}

	return Decision{}
}

func (g *Guard) toLogin(to Route, reason string) Decision {
	g.log.WithFields(logrus.Fields{"route": to.Name, "path": to.FullPath}).Debug(reason)

	return Decision{Redirect: &Redirect{
		Name:  LoginRoute,
		Path:  LoginPath,
		Query: url.Values{RedirectParam: []string{to.FullPath}},
	}}
}
