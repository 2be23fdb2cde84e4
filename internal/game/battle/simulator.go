package battle

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/progression"
)

// Timing and cost constants.
const (
	EnergyCost     = 15
	TimeLimitMs    = 60_000
	BaseIntervalMs = 5_000
	MinIntervalMs  = 500
)

// Round is one narrated tick of a battle.
type Round struct {
	Number   int    `json:"number"`
	TimeMs   int    `json:"time_ms"`
	Attacker Side   `json:"attacker"`
	Action   string `json:"action"`
	Damage   int    `json:"damage"`
	Critical bool   `json:"critical,omitempty"`
	Evaded   bool   `json:"evaded,omitempty"`
	// Skill names the active skill that proc'd this tick, if any.
	Skill        string `json:"skill,omitempty"`
	Counter      int    `json:"counter,omitempty"`
	Healed       int    `json:"healed,omitempty"`
	Reflected    int    `json:"reflected,omitempty"`
	PlayerHealth int    `json:"player_health"`
	EnemyHealth  int    `json:"enemy_health"`
}

// Rewards are the spoils of a victory.
type Rewards struct {
	Experience int `json:"experience"`
	Gold       int `json:"gold"`
	Reputation int `json:"reputation"`
}

// Result is the full record of one battle.
type Result struct {
	EnemyID   int64   `json:"enemy_id"`
	EnemyName string  `json:"enemy_name"`
	Outcome   Outcome `json:"outcome"`
	Success   bool    `json:"success"`
	Narrative string  `json:"narrative"`
	Rounds    []Round `json:"rounds"`
	// DurationMs is the simulated time of the last tick.
	DurationMs int `json:"duration_ms"`
	// PlayerHealthEnd is the raw final health, which may be 0 on defeat even
	// though the character itself never drops below 1.
	PlayerHealthEnd int                    `json:"player_health_end"`
	EnemyHealthEnd  int                    `json:"enemy_health_end"`
	EnergySpent     int                    `json:"energy_spent"`
	Rewards         Rewards                `json:"rewards"`
	Changes         []character.StatChange `json:"changes"`
	LevelUp         *progression.LevelUp   `json:"level_up,omitempty"`
}

// AttackInterval returns max(MinIntervalMs, BaseIntervalMs / (1 + agility/100)).
func AttackInterval(agility int) int {
	interval := int(float64(BaseIntervalMs) / (1 + float64(agility)/100))
	return max(interval, MinIntervalMs)
}

// Simulator runs battles.
type Simulator struct {
	rng    dice.RNG
	logger *zap.Logger
}

// NewSimulator creates a Simulator drawing from rng.
//
// Precondition: rng and logger must be non-nil.
func NewSimulator(rng dice.RNG, logger *zap.Logger) *Simulator {
	return &Simulator{rng: rng, logger: logger}
}

// Simulate fights c against enemy. held is the character's acquired skills.
//
// Precondition: c and enemy must be non-nil.
// Postcondition: With less than EnergyCost energy the result is Fled and c is
// unchanged. Otherwise energy and final health are always applied to c;
// rewards and a level-up check are applied only on Victory.
func (s *Simulator) Simulate(c *character.Character, enemy *content.EnemyTemplate, held []content.Skill) Result {
	res := Result{EnemyID: enemy.ID, EnemyName: enemy.Name}
	if c.CurrentEnergy < EnergyCost {
		res.Outcome = Fled
		res.Narrative = fmt.Sprintf("Too exhausted to fight (need %d energy), you flee from the %s.", EnergyCost, enemy.Name)
		res.PlayerHealthEnd = c.CurrentHealth
		res.EnemyHealthEnd = enemy.Health
		return res
	}

	player := PlayerCombatant(c)
	foe := EnemyCombatant(enemy)
	passives := SumPassives(held)
	actives := activeSkills(held)
	used := make(map[int64]bool, len(actives))

	playerInterval := AttackInterval(player.Agility)
	enemyInterval := AttackInterval(foe.Agility)
	playerNext, enemyNext := playerInterval, enemyInterval

	for player.Alive() && foe.Alive() {
		var round Round
		if playerNext <= enemyNext {
			if playerNext >= TimeLimitMs {
				break
			}
			round = s.playerTick(c, player, foe, actives, used, passives)
			round.TimeMs = playerNext
			playerNext += playerInterval
		} else {
			if enemyNext >= TimeLimitMs {
				break
			}
			round = s.enemyTick(foe, player, passives)
			round.TimeMs = enemyNext
			enemyNext += enemyInterval
		}
		round.Number = len(res.Rounds) + 1
		round.PlayerHealth = max(player.CurrentHP, 0)
		round.EnemyHealth = max(foe.CurrentHP, 0)
		res.Rounds = append(res.Rounds, round)
		res.DurationMs = round.TimeMs
	}

	switch {
	case !foe.Alive():
		res.Outcome = Victory
	case !player.Alive():
		res.Outcome = Defeat
	default:
		res.Outcome = Draw
	}
	res.Success = res.Outcome == Victory
	res.PlayerHealthEnd = max(player.CurrentHP, 0)
	res.EnemyHealthEnd = max(foe.CurrentHP, 0)

	energy := c.AdjustResource(character.Energy, -EnergyCost)
	res.EnergySpent = -energy.Delta
	res.Changes = append(res.Changes, energy, c.SetHealth(res.PlayerHealthEnd))

	if res.Outcome == Victory {
		res.Rewards = s.rewards(c, enemy, held)
		res.Changes = append(res.Changes,
			c.AdjustResource(character.Experience, res.Rewards.Experience),
			c.AdjustResource(character.Gold, res.Rewards.Gold),
			c.AdjustResource(character.Reputation, res.Rewards.Reputation),
		)
		res.LevelUp = progression.CheckLevelUp(c)
	}
	res.Narrative = narrate(enemy, res)

	s.logger.Debug("battle resolved",
		zap.Int64("character_id", c.ID),
		zap.Int64("enemy_id", enemy.ID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("rounds", len(res.Rounds)),
		zap.Int("duration_ms", res.DurationMs),
	)
	return res
}

func (s *Simulator) playerTick(c *character.Character, player, foe *Combatant, actives []*content.ActiveSkill, used map[int64]bool, p Passives) Round {
	round := Round{Attacker: SidePlayer}
	for _, skill := range actives {
		if used[skill.ID] || !s.rng.Chance(skill.TriggerChance) {
			continue
		}
		used[skill.ID] = true
		round.Skill = skill.Name
		round.Damage = SkillDamage(skill, c.Stats.Get(skill.ScalingStat), foe)
		verb := skill.Narrative
		if verb == "" {
			verb = "unleashes " + skill.Name
		}
		round.Action = fmt.Sprintf("%s %s for %d damage.", player.Name, verb, round.Damage)
		break
	}
	if round.Skill == "" {
		strike := ResolveStrike(player, foe, p.Critical, s.rng)
		round.Damage = strike.Damage
		round.Critical = strike.Critical
		round.Action = fmt.Sprintf("%s strikes the %s for %d damage.", player.Name, foe.Name, strike.Damage)
		if strike.Critical {
			round.Action = "Critical hit! " + round.Action
		}
	}
	foe.ApplyDamage(round.Damage)
	if p.LifeSteal > 0 {
		round.Healed = player.Heal(int(float64(round.Damage) * p.LifeSteal / 100))
		if round.Healed > 0 {
			round.Action += fmt.Sprintf(" You drain %d health.", round.Healed)
		}
	}
	return round
}

func (s *Simulator) enemyTick(foe, player *Combatant, p Passives) Round {
	round := Round{Attacker: SideEnemy}
	if p.Evasion > 0 && s.rng.Chance(p.Evasion/100) {
		round.Evaded = true
		round.Action = fmt.Sprintf("The %s attacks, but %s evades.", foe.Name, player.Name)
		if p.Counter > 0 && s.rng.Chance(p.Counter/100) {
			round.Counter = CounterDamage(player, foe, s.rng)
			foe.ApplyDamage(round.Counter)
			round.Action += fmt.Sprintf(" %s counters for %d damage.", player.Name, round.Counter)
		}
		return round
	}

	strike := ResolveStrike(foe, player, 0, s.rng)
	round.Critical = strike.Critical
	round.Damage = ReduceIncoming(strike.Damage, p.DamageReduction)
	player.ApplyDamage(round.Damage)
	round.Action = fmt.Sprintf("The %s hits %s for %d damage.", foe.Name, player.Name, round.Damage)
	if strike.Critical {
		round.Action = "Critical hit! " + round.Action
	}
	if p.Thorns > 0 {
		round.Reflected = int(float64(round.Damage) * p.Thorns / 100)
		if round.Reflected > 0 {
			foe.ApplyDamage(round.Reflected)
			round.Action += fmt.Sprintf(" Thorns reflect %d damage.", round.Reflected)
		}
	}
	return round
}

// rewards scales enemy yields by tier difference: +10% experience per tier the
// enemy exceeds the character's level, halved when the character overlevels
// the enemy by more than two tiers. Gold gains up to +50% at random.
func (s *Simulator) rewards(c *character.Character, enemy *content.EnemyTemplate, held []content.Skill) Rewards {
	expMult := 1.0
	if diff := enemy.Tier - c.Level; diff > 0 {
		expMult += 0.1 * float64(diff)
	}
	if c.Level-enemy.Tier > 2 {
		expMult *= 0.5
	}
	gold := int(math.Floor(float64(enemy.GoldReward) * (1 + s.rng.Float01()*0.5)))
	goldPct, expPct := content.EconomicBonus(held)
	return Rewards{
		Experience: content.ApplyPercent(int(math.Floor(float64(enemy.ExperienceReward)*expMult)), expPct),
		Gold:       content.ApplyPercent(gold, goldPct),
		Reputation: enemy.ReputationReward,
	}
}

func activeSkills(held []content.Skill) []*content.ActiveSkill {
	var out []*content.ActiveSkill
	for _, s := range held {
		if a, ok := s.(*content.ActiveSkill); ok {
			out = append(out, a)
		}
	}
	return out
}

func narrate(enemy *content.EnemyTemplate, res Result) string {
	seconds := float64(res.DurationMs) / 1000
	switch res.Outcome {
	case Victory:
		msg := fmt.Sprintf("You defeated the %s in %.1f seconds, earning %d experience, %d gold, and %d reputation.",
			enemy.Name, seconds, res.Rewards.Experience, res.Rewards.Gold, res.Rewards.Reputation)
		if res.LevelUp != nil {
			msg += fmt.Sprintf(" You reached level %d!", res.LevelUp.ToLevel)
		}
		return msg
	case Defeat:
		return fmt.Sprintf("The %s overwhelmed you after %.1f seconds. You limp away to recover.", enemy.Name, seconds)
	default:
		return fmt.Sprintf("After a minute of stalemate, you and the %s break off the fight.", enemy.Name)
	}
}

// TierRange returns the enemy tier band for a random opponent at level:
// level-1 through level+1, clamped to 1-10.
func TierRange(level int) (minTier, maxTier int) {
	return min(max(level-1, 1), 10), min(max(level+1, 1), 10)
}

// PickEnemy draws one candidate uniformly through rng. Returns nil when
// candidates is empty.
func PickEnemy(rng dice.RNG, candidates []*content.EnemyTemplate) *content.EnemyTemplate {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.UniformInt(len(candidates))]
}
