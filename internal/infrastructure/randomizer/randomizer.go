package randomizer

import (
	"math/rand"
	"sync"
	"time"
)

type randomizerImpl struct {
	mu  sync.Mutex // Защищает доступ к генератору случайных чисел
	rnd *rand.Rand
}

// New создаёт потокобезопасный randomizer на основе math/rand.
// Используется для разброса пауз между повторами, криптостойкость не нужна.
func New() Randomizer {
	return &randomizerImpl{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404
	}
}

// Int63n возвращает псевдослучайное число в [0, n).
func (r *randomizerImpl) Int63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int63n(n)
}
