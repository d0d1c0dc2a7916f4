package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const (
	subscriberBuffer  = 16
	reconnectInterval = 2 * time.Second
)

// MessageListener holds one dedicated connection that LISTENs on
// MessageChannel and fans notifications out to per-debate subscribers.
type MessageListener struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[uuid.UUID]map[chan domain.GroupMessage]struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessageListener(pool *pgxpool.Pool, logger *zap.Logger) *MessageListener {
	return &MessageListener{
		pool:   pool,
		logger: logger,
		subs:   make(map[uuid.UUID]map[chan domain.GroupMessage]struct{}),
	}
}

// Subscribe registers interest in one debate. Slow subscribers miss messages
// rather than block delivery to others.
func (l *MessageListener) Subscribe(debateID uuid.UUID) (<-chan domain.GroupMessage, func()) {
	ch := make(chan domain.GroupMessage, subscriberBuffer)

	l.mu.Lock()
	set, ok := l.subs[debateID]
	if !ok {
		set = make(map[chan domain.GroupMessage]struct{})
		l.subs[debateID] = set
	}
	set[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if set, ok := l.subs[debateID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(l.subs, debateID)
				}
			}
		})
	}
}

// Start listens in a background goroutine until Stop is called, reconnecting
// after connection failures.
func (l *MessageListener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.logger.Info("message listener started", zap.String("channel", MessageChannel))
		for {
			err := l.listen(ctx)
			if ctx.Err() != nil {
				l.logger.Info("message listener stopped")
				return
			}
			l.logger.Warn("message listener disconnected", zap.Error(err))

			select {
			case <-time.After(reconnectInterval):
			case <-ctx.Done():
				l.logger.Info("message listener stopped")
				return
			}
		}
	}()
}

// Stop ends the listen loop and closes every subscriber channel.
func (l *MessageListener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, set := range l.subs {
		for ch := range set {
			close(ch)
		}
		delete(l.subs, id)
	}
}

func (l *MessageListener) listen(ctx context.Context) error {
	c, err := l.pool.Acquire(ctx)
	if err != nil {
		return eris.Wrap(err, "listener: acquire connection")
	}
	defer c.Release()

	if _, err := c.Exec(ctx, "LISTEN "+MessageChannel); err != nil {
		return eris.Wrap(err, "listener: listen")
	}

	for {
		n, err := c.Conn().WaitForNotification(ctx)
		if err != nil {
			return eris.Wrap(err, "listener: wait for notification")
		}
		l.dispatch(n.Payload)
	}
}

func (l *MessageListener) dispatch(payload string) {
	var m domain.GroupMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		l.logger.Warn("dropping malformed notification", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs[m.DebateID] {
		select {
		case ch <- m:
		default:
			l.logger.Debug("subscriber buffer full, dropping message",
				zap.String("debate_id", m.DebateID.String()))
		}
	}
}
