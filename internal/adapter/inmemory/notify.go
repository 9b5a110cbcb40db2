package inmemory

import (
	"context"
	"sync"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// RealtimeRecord is one captured call to NotifyUser.
type RealtimeRecord struct {
	UserID  string
	Topic   string
	Payload any
}

// Realtime is an in-memory stand-in for the realtime push channel.
type Realtime struct {
	mu         sync.Mutex
	notified   []RealtimeRecord
	broadcasts []RealtimeRecord
}

var _ port.Realtime = (*Realtime)(nil)

func NewRealtime() *Realtime { return &Realtime{} }

func (r *Realtime) NotifyUser(ctx context.Context, userID, topic string, payload any) {
	r.mu.Lock()
	r.notified = append(r.notified, RealtimeRecord{UserID: userID, Topic: topic, Payload: payload})
	r.mu.Unlock()
}

func (r *Realtime) Broadcast(ctx context.Context, topic string, payload any) {
	r.mu.Lock()
	r.broadcasts = append(r.broadcasts, RealtimeRecord{Topic: topic, Payload: payload})
	r.mu.Unlock()
}

func (r *Realtime) Notified() []RealtimeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RealtimeRecord, len(r.notified))
	copy(out, r.notified)
	return out
}

func (r *Realtime) Broadcasts() []RealtimeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RealtimeRecord, len(r.broadcasts))
	copy(out, r.broadcasts)
	return out
}

// Secondary is an in-memory stand-in for the out-of-band channel.
type Secondary struct {
	mu       sync.Mutex
	messages []SecondaryRecord
}

type SecondaryRecord struct {
	User    domain.User
	Message string
}

var _ port.Secondary = (*Secondary)(nil)

func NewSecondary() *Secondary { return &Secondary{} }

func (s *Secondary) Send(ctx context.Context, user domain.User, message string) error {
	s.mu.Lock()
	s.messages = append(s.messages, SecondaryRecord{User: user, Message: message})
	s.mu.Unlock()
	return nil
}

func (s *Secondary) Messages() []SecondaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SecondaryRecord, len(s.messages))
	copy(out, s.messages)
	return out
}

// Projection is an in-memory stand-in for the order-book projection service.
type Projection struct {
	mu       sync.Mutex
	refreshed []string
}

var _ port.Projection = (*Projection)(nil)

func NewProjection() *Projection { return &Projection{} }

func (p *Projection) RefreshAsset(ctx context.Context, asset string) {
	p.mu.Lock()
	p.refreshed = append(p.refreshed, asset)
	p.mu.Unlock()
}

func (p *Projection) Refreshed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.refreshed))
	copy(out, p.refreshed)
	return out
}
