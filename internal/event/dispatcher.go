package event

import (
	"fmt"

	"github.com/blues/cfl/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// Processor 事件处理器，由链下消费方实现（索引、通知等）
type Processor interface {
	Name() string
	Process(ev Event) error
}

// Dispatcher 异步事件分发器，使用协程池将事件推给所有注册的处理器
type Dispatcher struct {
	pool       *ants.Pool
	processors []Processor
}

// NewDispatcher 创建事件分发器
func NewDispatcher(poolSize int, processors ...Processor) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch pool: %w", err)
	}
	return &Dispatcher{
		pool:       pool,
		processors: processors,
	}, nil
}

// Register 注册事件处理器
func (d *Dispatcher) Register(p Processor) {
	d.processors = append(d.processors, p)
}

// Emit 将事件异步分发给所有处理器。提交失败只记日志，事件已随事务落库，
// 消费方可以随时回放。
func (d *Dispatcher) Emit(ev Event) {
	for _, p := range d.processors {
		processor := p
		err := d.pool.Submit(func() {
			if err := processor.Process(ev); err != nil {
				logger.Error("Processor %s failed to process event %s for campaign %s: %v",
					processor.Name(), ev.Type, ev.Campaign, err)
			}
		})
		if err != nil {
			logger.Error("Failed to submit event %s to dispatch pool: %v", ev.Type, err)
		}
	}
}

// Release 释放协程池
func (d *Dispatcher) Release() {
	d.pool.Release()
}

// LogProcessor 把事件写入日志的处理器
type LogProcessor struct{}

// Name 处理器名称
func (LogProcessor) Name() string {
	return "log_processor"
}

// Process 记录事件
func (LogProcessor) Process(ev Event) error {
	logger.Info("Event %s emitted for campaign %s", ev.Type, ev.Campaign)
	return nil
}
