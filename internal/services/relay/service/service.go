// Package service implements the relay: ingress, the sequential task queue and result delivery
package service

import (
	"context"

	"cardrelay/internal/modkit"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
)

// Config controls the relay
type Config struct {
	OnFailure dom.FailurePolicy
}

// Collaborators are the relay's external ports
type Collaborators struct {
	Resolver ldom.ResolverPort
	Channel  dom.NotificationChannel
	Store    dom.ChatCategoryStore
}

// Svc implements dom.QueuePort and dom.IngressPort
type Svc struct {
	*Queue
	*Ingress
}

// New wires the queue, worker, delivery and ingress together.
// ctx is the process context; tasks run detached from its cancellation
func New(ctx context.Context, deps modkit.Deps, cfg Config, c Collaborators) *Svc {
	met := deps.MetricsOrNop()
	deliver := NewDeliverer(c.Channel, c.Store, met)
	worker := NewWorker(c.Resolver, deliver, c.Channel, cfg.OnFailure, met)
	q := NewQueue(ctx, worker, met)
	in := NewIngress(q, c.Channel, NewCommands(c.Channel, c.Store, met), met)
	return &Svc{Queue: q, Ingress: in}
}
