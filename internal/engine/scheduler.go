package engine

import (
	"sync"
	"time"
)

// Task 已排期的任务句柄
type Task interface {
	// Cancel 取消任务。任务已执行或已取消时无效果
	Cancel()
}

// Scheduler 定时任务抽象。所有延时和周期行为都经过它排期，
// 因此可以在测试里用虚拟时钟驱动
type Scheduler interface {
	After(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}

type realScheduler struct{}

// NewScheduler 返回基于真实时钟的调度器
func NewScheduler() Scheduler {
	return realScheduler{}
}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Cancel() {
	t.timer.Stop()
}

func (realScheduler) After(d time.Duration, fn func()) Task {
	return &timerTask{timer: time.AfterFunc(d, fn)}
}

type tickerTask struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

func (realScheduler) Every(d time.Duration, fn func()) Task {
	task := &tickerTask{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-task.stop:
				return
			}
		}
	}()
	return task
}
