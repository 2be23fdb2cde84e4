package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger and implements RNG.
// All draws are logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

var _ RNG = (*Roller)(nil)

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// UniformInt returns an int in [0, max), or 0 when max <= 0 (no draw is made).
func (r *Roller) UniformInt(max int) int {
	if max <= 0 {
		return 0
	}
	v := r.src.Intn(max)
	r.logger.Debug("uniform int", zap.Int("max", max), zap.Int("value", v))
	return v
}

// UniformIntRange returns an int in [min, max]. When max <= min it returns min
// without drawing.
func (r *Roller) UniformIntRange(min, max int) int {
	if max <= min {
		return min
	}
	v := min + r.src.Intn(max-min+1)
	r.logger.Debug("uniform int range", zap.Int("min", min), zap.Int("max", max), zap.Int("value", v))
	return v
}

// Float01 returns a float in [0, 1).
func (r *Roller) Float01() float64 {
	v := r.src.Float64()
	r.logger.Debug("uniform float", zap.Float64("value", v))
	return v
}

// Chance draws once and reports whether the draw is strictly less than p.
//
// Postcondition: p >= 1 always yields true; p <= 0 always yields false.
func (r *Roller) Chance(p float64) bool {
	draw := r.src.Float64()
	hit := draw < p
	r.logger.Debug("chance", zap.Float64("p", p), zap.Float64("draw", draw), zap.Bool("hit", hit))
	return hit
}

// DiceSum rolls count dice of the given sides and returns their sum.
// Returns 0 when count < 1 or sides < 1.
func (r *Roller) DiceSum(sides, count int) int {
	if count < 1 || sides < 1 {
		return 0
	}
	total := 0
	rolled := make([]int, count)
	for i := range rolled {
		rolled[i] = r.src.Intn(sides) + 1
		total += rolled[i]
	}
	r.logger.Debug("dice sum",
		zap.Int("sides", sides),
		zap.Ints("dice", rolled),
		zap.Int("total", total),
	)
	return total
}
