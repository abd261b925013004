package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/hrm/internal/observability"
)

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, deliver func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			// register as idle before waiting for work
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("mail worker delivering", "worker_id", w.ID, "template", msg.Template)
				deliver(msg)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers mail off the request path. Delivery is best effort:
// failures are logged and counted, never retried by the dispatcher.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	sendTimeout time.Duration

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	stopOnce   sync.Once
}

func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		sender:      sender,
		logger:      logger,
		sendTimeout: sendTimeout,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan Message, queueSize),
		workerPool:  make(chan chan Message, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}

	d.start()

	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("mail worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- msg:
				case <-d.ctx.Done():
					d.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

// Enqueue hands msg to the pool without blocking. A full queue rejects the
// message with ErrQueueFull.
func (d *Dispatcher) Enqueue(msg Message) error {
	if d.ctx.Err() != nil {
		return context.Canceled
	}

	select {
	case d.jobQueue <- msg:
		d.logger.Debug("mail queued",
			"template", msg.Template,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.logger.Warn("mail queue full, dropping message",
			"template", msg.Template,
			"queue_capacity", cap(d.jobQueue))
		observability.ObserveMail(msg.Template, ErrQueueFull)
		return ErrQueueFull
	}
}

// Send delivers msg synchronously through the underlying sender.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	err := d.sender.Send(ctx, msg)
	observability.ObserveMail(msg.Template, err)
	return err
}

// deliver is bounded by the send timeout only, so a send already in progress
// when Shutdown cancels the pool still runs to completion.
func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.Send(ctx, msg); err != nil {
		d.logger.Error("mail delivery failed",
			"template", msg.Template,
			"error", err)
		return
	}
	d.logger.Info("mail delivered", "template", msg.Template)
}

// Shutdown stops the workers and waits for in-flight sends. Messages still
// queued are dropped.
func (d *Dispatcher) Shutdown() {
	d.stopOnce.Do(func() {
		d.logger.Info("shutting down mail dispatcher")
		d.cancel()
		d.wg.Wait()
		d.logger.Info("mail dispatcher shutdown complete")
	})
}
