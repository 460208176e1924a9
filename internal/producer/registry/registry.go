// Package registry maps producer codes to the handlers that turn their
// exports into canonical line items.
package registry

import (
	"context"
	"io"

	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/producer/domain"
	"go.uber.org/fx"
)

// Handler normalizes one producer's export.
type Handler interface {
	Clean(ctx context.Context, src io.ReadSeeker) (*pipeline.Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, src io.ReadSeeker) (*pipeline.Result, error)

func (f HandlerFunc) Clean(ctx context.Context, src io.ReadSeeker) (*pipeline.Result, error) {
	return f(ctx, src)
}

// Registration binds a handler to a producer layout.
type Registration struct {
	Kind    domain.Kind
	Handler Handler
}

// Registry is built once at startup and only read afterwards.
type Registry struct {
	handlers map[domain.Kind]Handler
}

// NewRegistry builds a registry from regs. A later registration for the
// same kind replaces an earlier one.
func NewRegistry(regs ...Registration) *Registry {
	r := &Registry{handlers: make(map[domain.Kind]Handler, len(regs))}
	for _, reg := range regs {
		r.Register(reg.Kind, reg.Handler)
	}
	return r
}

// Register binds kind to h, replacing any previous handler.
func (r *Registry) Register(kind domain.Kind, h Handler) {
	if h == nil {
		return
	}
	r.handlers[kind] = h
}

// Kinds lists the registered layouts.
func (r *Registry) Kinds() []domain.Kind {
	out := make([]domain.Kind, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	return out
}

// Clean dispatches src to the handler registered for code and returns its
// canonical output unchanged.
func (r *Registry) Clean(ctx context.Context, code string, src io.ReadSeeker) (*pipeline.Result, error) {
	kind, _ := domain.ParseKind(code)
	h, ok := r.handlers[kind]
	if !ok {
		return nil, &domain.UnsupportedProducerError{Code: code}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.Clean(ctx, src)
}

// Builtin returns the handlers for the supported producer layouts.
func Builtin() []Registration {
	return []Registration{
		{Kind: domain.KindSFG, Handler: HandlerFunc(CleanSFG)},
		{Kind: domain.KindSQ1, Handler: HandlerFunc(CleanSQ1)},
		{Kind: domain.KindFNS, Handler: HandlerFunc(CleanFNS)},
	}
}

type Params struct {
	fx.In

	Extra []Registration `group:"producer_handlers"`
}

// Provide builds the registry from the builtin handlers plus any
// registrations supplied to the producer_handlers group.
func Provide(p Params) *Registry {
	return NewRegistry(append(Builtin(), p.Extra...)...)
}
