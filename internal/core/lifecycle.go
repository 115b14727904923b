package core

import "sync/atomic"

// LifecycleState описывает состояние готовности процесса.
type LifecycleState int32

const (
	StateNotReady LifecycleState = iota
	StateReady
)

func (s LifecycleState) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "not_ready"
	}
}

// Lifecycle переводит процесс из NotReady в Ready ровно один раз за время жизни.
type Lifecycle struct {
	state atomic.Int32
}

// NewLifecycle создает lifecycle в состоянии NotReady.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// MarkReady выполняет переход и возвращает true только для вызова, который его совершил.
// Повторные события готовности (например, после переподключения) возвращают false.
func (l *Lifecycle) MarkReady() bool {
	return l.state.CompareAndSwap(int32(StateNotReady), int32(StateReady))
}

// State возвращает текущее состояние.
func (l *Lifecycle) State() LifecycleState {
	return LifecycleState(l.state.Load())
}

// Ready сообщает, завершен ли переход.
func (l *Lifecycle) Ready() bool {
	return l.State() == StateReady
}
