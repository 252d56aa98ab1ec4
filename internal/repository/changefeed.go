package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangesChannel - канал LISTEN/NOTIFY, в который пишут триггеры таблиц request, offer и orders.
const ChangesChannel = "marketplace_changes"

// ChangeEvent - изменение строки таблицы.
type ChangeEvent struct {
	Table  string         `json:"table"`
	Op     string         `json:"op"`
	ID     string         `json:"id"`
	Record map[string]any `json:"record"`
}

// ParseChangeEvent разбирает payload уведомления Postgres.
func ParseChangeEvent(payload string) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("invalid change payload: %w", err)
	}
	if ev.Table == "" {
		return ChangeEvent{}, errors.New("invalid change payload: missing table")
	}
	return ev, nil
}

// ChangeFilter сравнивает поля записи на равенство строковых представлений.
type ChangeFilter map[string]string

// Match проверяет, подходит ли событие под фильтр.
func (f ChangeFilter) Match(ev ChangeEvent) bool {
	for field, want := range f {
		got, ok := ev.Record[field]
		if !ok || got == nil {
			return false
		}
		if s, isString := got.(string); isString {
			if s != want {
				return false
			}
			continue
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// Subscriber - подписка на изменения таблицы.
type Subscriber interface {
	Subscribe(ctx context.Context, table string, filter ChangeFilter, onChange func(ChangeEvent)) (func(), error)
}

// ChangeFeed доставляет изменения строк через LISTEN/NOTIFY.
// Каждая подписка держит свое соединение из пула.
type ChangeFeed struct {
	DB     *pgxpool.Pool
	Logger *log.Logger
}

// NewChangeFeed создает новый экземпляр ChangeFeed.
func NewChangeFeed(db *pgxpool.Pool, logger *log.Logger) *ChangeFeed {
	return &ChangeFeed{DB: db, Logger: logger}
}

// Subscribe вызывает onChange для каждого изменения table, подходящего под filter.
// События одной подписки доставляются последовательно в порядке уведомлений.
// Возвращаемая функция отменяет подписку и дожидается остановки слушателя.
func (f *ChangeFeed) Subscribe(ctx context.Context, table string, filter ChangeFilter, onChange func(ChangeEvent)) (func(), error) {
	conn, err := f.DB.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	if _, err = conn.Exec(ctx, "LISTEN "+ChangesChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					f.Logger.Printf("change feed for %s stopped: %v", table, err)
				}
				return
			}
			ev, err := ParseChangeEvent(n.Payload)
			if err != nil {
				f.Logger.Println(err)
				continue
			}
			if ev.Table != table || !filter.Match(ev) {
				continue
			}
			onChange(ev)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return unsubscribe, nil
}
