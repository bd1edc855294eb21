package brokerpublisher

import (
	"sync"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/lockstep-network/lockstep/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// publisher fans settlement facts out to in-process subscribers and mirrors
// them on the log. Subscriber channels are buffered, a slow consumer drops
// facts rather than blocking the engine.
type publisher struct {
	lock        *sync.RWMutex
	subscribers []chan domain.Event
}

func NewPublisher() ports.EventPublisher {
	return &publisher{
		lock: &sync.RWMutex{},
	}
}

func (p *publisher) Publish(events ...domain.Event) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	for _, event := range events {
		log.Debugf("publishing fact %T", event)
		for _, sub := range p.subscribers {
			select {
			case sub <- event:
			default:
				log.Warnf("subscriber busy, dropped fact %T", event)
			}
		}
	}
}

// Subscribe registers a new consumer and returns its channel.
func (p *publisher) Subscribe() <-chan domain.Event {
	p.lock.Lock()
	defer p.lock.Unlock()

	ch := make(chan domain.Event, 32)
	p.subscribers = append(p.subscribers, ch)
	return ch
}
