package affirmation

import (
	"math/rand/v2"
	"strings"
	"time"
)

// fallbackText возвращается, если пул пуст.
const fallbackText = "You are allowed to move gently through this day."

var defaults = []string{
	"You are allowed to move gently through this day.",
	"Your calm is a quiet kind of strength.",
	"Small kind steps still carry you forward.",
	"You deserve the same softness you give to others.",
	"There is room today for rest and for wonder.",
	"Your presence makes the world a little warmer.",
	"You are growing, even on the slow days.",
	"Breathe in hope, breathe out what you cannot hold.",
	"Good things are unfolding, some of them through you.",
	"You are enough exactly as you are this morning.",
	"Let today be light and let yourself be kind.",
	"Every sunrise is a fresh and patient beginning.",
	"Your heart knows how to find the good.",
	"It is safe to take things one gentle moment at a time.",
	"You bring your own light wherever you go.",
}

// Pool: неизменяемый набор коротких утренних аффирмаций.
type Pool struct {
	items []string
}

// Default возвращает встроенный пул.
func Default() Pool {
	return New(defaults)
}

// New создаёт пул, отбрасывая пустые строки.
func New(items []string) Pool {
	p := Pool{items: make([]string, 0, len(items))}
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			p.items = append(p.items, s)
		}
	}
	return p
}

// Len возвращает размер пула.
func (p Pool) Len() int { return len(p.items) }

// PickDaily выбирает одну аффирмацию равновероятно. nil rng: случайный источник по времени.
func (p Pool) PickDaily(rng *rand.Rand) string {
	if len(p.items) == 0 {
		return fallbackText
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x676c6f77))
	}
	return p.items[rng.IntN(len(p.items))]
}
