package systemclock

import (
	"time"

	"github.com/lockstep-network/lockstep/internal/core/ports"
)

type systemClock struct{}

func NewClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}
