package world

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-edit/internal/logging"
)

// DefaultTickInterval 20 тиков в секунду
const DefaultTickInterval = 50 * time.Millisecond

// ErrTickLoopStopped задача отправлена в остановленный цикл
var ErrTickLoopStopped = errors.New("tick loop stopped")

// Состояния задачи: ждёт в очереди, выполняется, отменена до старта
const (
	taskPending int32 = iota
	taskRunning
	taskCancelled
)

type tickTask struct {
	ctx   context.Context
	fn    func() error
	done  chan error
	state *atomic.Int32
}

// claim переводит задачу из очереди в state; false, если её уже забрали
func (t tickTask) claim(state int32) bool {
	return t.state.CompareAndSwap(taskPending, state)
}

// TickLoop серверный поток мира. Все правки мира выполняются внутри него между тиками.
type TickLoop struct {
	manager  *Manager
	interval time.Duration
	logger   *logging.Logger

	tasks chan tickTask
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
	ticks uint64
	mu    sync.Mutex
}

// NewTickLoop создаёт цикл тиков для менеджера измерений
func NewTickLoop(m *Manager, interval time.Duration) *TickLoop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickLoop{
		manager:  m,
		interval: interval,
		logger:   logging.GetComponentLogger("world"),
		tasks:    make(chan tickTask, 64),
		stop:     make(chan struct{}),
	}
}

// Start запускает цикл в отдельной горутине
func (tl *TickLoop) Start() {
	tl.wg.Add(1)
	go func() {
		defer tl.wg.Done()

		ticker := time.NewTicker(tl.interval)
		defer ticker.Stop()

		for {
			select {
			case <-tl.stop:
				tl.drain()
				return
			case task := <-tl.tasks:
				tl.run(task)
			case <-ticker.C:
				dirty := tl.manager.Tick()
				tl.mu.Lock()
				tl.ticks++
				n := tl.ticks
				tl.mu.Unlock()
				if dirty > 0 {
					tl.logger.Trace("Тик %d: изменено чанков %d", n, dirty)
				}
			}
		}
	}()
	tl.logger.Info("Цикл тиков запущен (интервал %v)", tl.interval)
}

// Stop останавливает цикл и ждёт его завершения
func (tl *TickLoop) Stop() {
	tl.once.Do(func() {
		close(tl.stop)
		tl.wg.Wait()
		tl.logger.Info("Цикл тиков остановлен")
	})
}

// Ticks количество выполненных тиков
func (tl *TickLoop) Ticks() uint64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.ticks
}

// Do выполняет fn в потоке мира и возвращает её ошибку.
// Если ctx истёк до старта задачи, fn не выполняется и возвращается ctx.Err().
// Начатая задача всегда доводится до конца, Do ждёт её результат.
func (tl *TickLoop) Do(ctx context.Context, fn func() error) error {
	select {
	case <-tl.stop:
		return ErrTickLoopStopped
	default:
	}

	task := tickTask{ctx: ctx, fn: fn, done: make(chan error, 1), state: new(atomic.Int32)}
	select {
	case tl.tasks <- task:
	case <-tl.stop:
		return ErrTickLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-task.done:
		return err
	case <-ctx.Done():
		if task.claim(taskCancelled) {
			return ctx.Err()
		}
	case <-tl.stop:
		if task.claim(taskCancelled) {
			return ErrTickLoopStopped
		}
	}
	return <-task.done
}

func (tl *TickLoop) run(task tickTask) {
	if !task.claim(taskRunning) {
		return
	}
	if err := task.ctx.Err(); err != nil {
		task.done <- err
		return
	}
	task.done <- tl.exec(task.fn)
}

func (tl *TickLoop) exec(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tl.logger.Error("Паника в задаче мира: %v", r)
			err = errors.New("world task panicked")
		}
	}()
	return fn()
}

// drain отклоняет задачи, оставшиеся в очереди после остановки
func (tl *TickLoop) drain() {
	for {
		select {
		case task := <-tl.tasks:
			if task.claim(taskCancelled) {
				task.done <- ErrTickLoopStopped
			}
		default:
			return
		}
	}
}
