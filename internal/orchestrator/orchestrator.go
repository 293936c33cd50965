// Package orchestrator aggregates domain services behind one registry and
// routes tool, resource and prompt requests to the service that owns them.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// Route kinds used in logs, metrics and span names.
const (
	KindTool     = "tool"
	KindResource = "resource"
	KindPrompt   = "prompt"
)

// DefaultCheckTimeout bounds each service check during HealthCheck.
const DefaultCheckTimeout = 5 * time.Second

// Collision records a manifest name registered by more than one service.
// Owner is the service that serves the name; Shadowed lost it.
type Collision struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Shadowed string `json:"shadowed"`
}

func (c Collision) String() string {
	return fmt.Sprintf("%s %q registered by %s is shadowed by %s", c.Kind, c.Name, c.Shadowed, c.Owner)
}

// Option configures an Orchestrator.
type Option func(*options)

type options struct {
	logger       *common.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	strict       bool
	checkTimeout time.Duration
}

// WithLogger sets the logger used for routing decisions.
func WithLogger(l *common.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records route durations and unknown lookups.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer used for routed calls. The global tracer
// provider is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithStrictNames makes New fail when two services register the same tool
// name, resource URI or prompt name.
func WithStrictNames() Option {
	return func(o *options) { o.strict = true }
}

// WithCheckTimeout overrides DefaultCheckTimeout.
func WithCheckTimeout(d time.Duration) Option {
	return func(o *options) { o.checkTimeout = d }
}

type entry struct {
	key string
	svc service.Service
}

// Orchestrator is the immutable service registry. It is safe for concurrent
// use once constructed.
type Orchestrator struct {
	entries    []entry
	byKey      map[string]service.Service
	tools      map[string]entry
	resources  map[string]entry
	prompts    map[string]entry
	collisions []Collision

	logger       *common.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	checkTimeout time.Duration
}

// New builds the registry from registrations, in order. Manifests are indexed
// once; on a name collision the first registration keeps the name.
func New(registrations []service.Registration, opts ...Option) (*Orchestrator, error) {
	o := options{checkTimeout: DefaultCheckTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = common.NewSilentLogger()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("github.com/devansh-m12/doraemon-sub001/internal/orchestrator")
	}

	orc := &Orchestrator{
		byKey:        make(map[string]service.Service, len(registrations)),
		tools:        make(map[string]entry),
		resources:    make(map[string]entry),
		prompts:      make(map[string]entry),
		logger:       o.logger,
		metrics:      o.metrics,
		tracer:       o.tracer,
		checkTimeout: o.checkTimeout,
	}

	for i, r := range registrations {
		if r.Key == "" {
			return nil, fmt.Errorf("registration %d: empty service key", i)
		}
		if r.Service == nil {
			return nil, fmt.Errorf("service %q: nil service", r.Key)
		}
		if _, dup := orc.byKey[r.Key]; dup {
			return nil, fmt.Errorf("service %q registered twice", r.Key)
		}
		e := entry{key: r.Key, svc: r.Service}
		orc.entries = append(orc.entries, e)
		orc.byKey[r.Key] = r.Service

		for _, t := range r.Service.Tools() {
			orc.index(KindTool, orc.tools, t.Name, e)
		}
		for _, res := range r.Service.Resources() {
			orc.index(KindResource, orc.resources, res.URI, e)
		}
		for _, p := range r.Service.Prompts() {
			orc.index(KindPrompt, orc.prompts, p.Name, e)
		}
	}

	if o.strict && len(orc.collisions) > 0 {
		errs := make([]error, len(orc.collisions))
		for i, c := range orc.collisions {
			errs[i] = errors.New(c.String())
		}
		return nil, fmt.Errorf("manifest name collisions: %w", errors.Join(errs...))
	}
	return orc, nil
}

func (o *Orchestrator) index(kind string, idx map[string]entry, name string, e entry) {
	owner, exists := idx[name]
	if !exists {
		idx[name] = e
		return
	}
	if owner.key == e.key {
		return
	}
	c := Collision{Kind: kind, Name: name, Owner: owner.key, Shadowed: e.key}
	o.collisions = append(o.collisions, c)
	o.logger.Warn().Str("kind", kind).Str("name", name).Str("owner", owner.key).Str("shadowed", e.key).Msg("Manifest name collision, first registration wins")
}

// Collisions reports every name that more than one service registered.
func (o *Orchestrator) Collisions() []Collision {
	return append([]Collision(nil), o.collisions...)
}

// GetAllTools concatenates every service's tools in registration order.
func (o *Orchestrator) GetAllTools() []service.ToolDefinition {
	var out []service.ToolDefinition
	for _, e := range o.entries {
		out = append(out, e.svc.Tools()...)
	}
	return out
}

// GetAllResources concatenates every service's resources in registration order.
func (o *Orchestrator) GetAllResources() []service.ResourceDefinition {
	var out []service.ResourceDefinition
	for _, e := range o.entries {
		out = append(out, e.svc.Resources()...)
	}
	return out
}

// GetAllPrompts concatenates every service's prompts in registration order.
func (o *Orchestrator) GetAllPrompts() []service.PromptDefinition {
	var out []service.PromptDefinition
	for _, e := range o.entries {
		out = append(out, e.svc.Prompts()...)
	}
	return out
}

// HandleToolCall forwards args unchanged to the service owning the tool and
// returns its result and error unmodified.
func (o *Orchestrator) HandleToolCall(ctx context.Context, name string, args service.Args) (any, error) {
	e, ok := o.tools[name]
	if !ok {
		return nil, o.unknown(KindTool, service.UnknownTool(name))
	}
	return o.route(ctx, KindTool, e, name, func(ctx context.Context) (any, error) {
		return e.svc.HandleToolCall(ctx, name, args)
	})
}

// HandleResourceRead forwards the read to the service owning uri.
func (o *Orchestrator) HandleResourceRead(ctx context.Context, uri string) (any, error) {
	e, ok := o.resources[uri]
	if !ok {
		return nil, o.unknown(KindResource, service.UnknownResource(uri))
	}
	return o.route(ctx, KindResource, e, uri, func(ctx context.Context) (any, error) {
		return e.svc.HandleResourceRead(ctx, uri)
	})
}

// HandlePromptRequest forwards args unchanged to the service owning the prompt.
func (o *Orchestrator) HandlePromptRequest(ctx context.Context, name string, args service.Args) (any, error) {
	e, ok := o.prompts[name]
	if !ok {
		return nil, o.unknown(KindPrompt, service.UnknownPrompt(name))
	}
	return o.route(ctx, KindPrompt, e, name, func(ctx context.Context) (any, error) {
		return e.svc.HandlePromptRequest(ctx, name, args)
	})
}

func (o *Orchestrator) unknown(kind string, err error) error {
	o.metrics.IncUnknown(kind)
	o.logger.Debug().Str("kind", kind).Err(err).Msg("No service owns request")
	return err
}

func (o *Orchestrator) route(ctx context.Context, kind string, e entry, name string, call func(context.Context) (any, error)) (any, error) {
	o.logger.Debug().Str("service", e.key).Str(kind, name).Msg("Routing " + kind)

	ctx, span := o.tracer.Start(ctx, "orchestrator."+kind, trace.WithAttributes(
		attribute.String("oneinch.service", e.key),
		attribute.String("oneinch."+kind, name),
	))
	defer span.End()

	start := time.Now()
	result, err := call(ctx)
	o.metrics.ObserveRoute(kind, e.key, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// GetService returns the service registered under key.
func (o *Orchestrator) GetService(key string) (service.Service, bool) {
	svc, ok := o.byKey[key]
	return svc, ok
}

// GetServiceNames returns the registration keys in registration order.
func (o *Orchestrator) GetServiceNames() []string {
	names := make([]string, len(o.entries))
	for i, e := range o.entries {
		names[i] = e.key
	}
	return names
}
