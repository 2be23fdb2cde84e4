package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
)

func newCharacter(t require.TestingT) *character.Character {
	c, err := character.New("Ada", character.Warrior)
	require.NoError(t, err)
	return c
}

// fixedSim rolls a flat bonus of 10 on every strike and never crits.
func fixedSim() *battle.Simulator {
	seq := dice.NewSequence([]int{9}, []float64{0.5})
	return battle.NewSimulator(dice.NewLoggedRoller(seq, zap.NewNop()), zap.NewNop())
}

func TestAttackInterval(t *testing.T) {
	assert.Equal(t, 5000, battle.AttackInterval(0))
	assert.Equal(t, 2500, battle.AttackInterval(100))
	assert.Equal(t, 500, battle.AttackInterval(900))
	assert.Equal(t, 500, battle.AttackInterval(5000))
}

func TestSimulate_ThreePlayerHitsWin(t *testing.T) {
	c := newCharacter(t)
	c.Stats.Agility = 900
	enemy := &content.EnemyTemplate{ID: 1, Name: "Rat", Health: 40, Tier: 1, ExperienceReward: 20, GoldReward: 20, ReputationReward: 2}

	res := fixedSim().Simulate(c, enemy, nil)
	require.Equal(t, battle.Victory, res.Outcome)
	assert.True(t, res.Success)
	require.Len(t, res.Rounds, 3)
	for i, r := range res.Rounds {
		assert.Equal(t, battle.SidePlayer, r.Attacker)
		assert.Equal(t, 16, r.Damage, "warrior 10 str × 1.2 / 2 + 10 flat")
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, 500*(i+1), r.TimeMs)
	}
	assert.Equal(t, 0, res.EnemyHealthEnd)
	assert.Equal(t, 1500, res.DurationMs)

	assert.Equal(t, battle.Rewards{Experience: 20, Gold: 25, Reputation: 2}, res.Rewards)
	assert.Equal(t, 85, c.CurrentEnergy)
	assert.Equal(t, 100, c.CurrentHealth)
	assert.Equal(t, 20, c.Experience)
	assert.Equal(t, 25, c.Gold)
	assert.Equal(t, 2, c.Reputation)
}

func TestSimulate_PlayerWinsTies(t *testing.T) {
	c := newCharacter(t)
	enemy := &content.EnemyTemplate{ID: 1, Name: "Twin", Agility: 10, Health: 500, Tier: 1}

	res := fixedSim().Simulate(c, enemy, nil)
	require.NotEmpty(t, res.Rounds)
	assert.Equal(t, battle.SidePlayer, res.Rounds[0].Attacker)
	assert.Equal(t, battle.SideEnemy, res.Rounds[1].Attacker)
	assert.Equal(t, res.Rounds[0].TimeMs, res.Rounds[1].TimeMs)
}

func TestSimulate_FleesWithoutEnergy(t *testing.T) {
	c := newCharacter(t)
	c.CurrentEnergy = 14
	before := c.Clone()
	seq := dice.NewSequence([]int{9}, []float64{0.5})
	sim := battle.NewSimulator(dice.NewLoggedRoller(seq, zap.NewNop()), zap.NewNop())

	res := sim.Simulate(c, &content.EnemyTemplate{ID: 1, Name: "Rat", Health: 10, Tier: 1}, nil)
	assert.Equal(t, battle.Fled, res.Outcome)
	assert.False(t, res.Success)
	assert.Empty(t, res.Rounds)
	assert.Equal(t, before, c)
	assert.Zero(t, seq.IntDraws())
	assert.Zero(t, seq.FloatDraws())
}

func TestSimulate_DefeatReportsZeroButCharacterKeepsOne(t *testing.T) {
	c := newCharacter(t)
	c.CurrentHealth = 5
	enemy := &content.EnemyTemplate{ID: 2, Name: "Ogre", Strength: 100, Agility: 900, Health: 500, Tier: 3, ExperienceReward: 100, GoldReward: 100}

	res := fixedSim().Simulate(c, enemy, nil)
	assert.Equal(t, battle.Defeat, res.Outcome)
	assert.Equal(t, 0, res.PlayerHealthEnd)
	assert.Equal(t, 1, c.CurrentHealth)
	assert.Equal(t, 85, c.CurrentEnergy)
	assert.Zero(t, c.Experience)
	assert.Zero(t, c.Gold)
	assert.Equal(t, battle.Rewards{}, res.Rewards)
}

func TestSimulate_TimeoutIsDraw(t *testing.T) {
	c := newCharacter(t)
	c.Stats.Endurance = 500
	c.MaxHealth, c.CurrentHealth = 1000, 1000
	enemy := &content.EnemyTemplate{ID: 3, Name: "Wall", Strength: 10, Endurance: 500, Health: 1000, Tier: 1}

	res := fixedSim().Simulate(c, enemy, nil)
	assert.Equal(t, battle.Draw, res.Outcome)
	// player every 4545ms (13 ticks), enemy every 5000ms (11 ticks)
	assert.Len(t, res.Rounds, 24)
	assert.Equal(t, 13*4545, res.DurationMs)
	for _, r := range res.Rounds {
		assert.Less(t, r.TimeMs, battle.TimeLimitMs)
		assert.Equal(t, 1, r.Damage)
	}
	assert.Equal(t, 989, c.CurrentHealth)
}

func TestSimulate_ActiveSkillProcsOnce(t *testing.T) {
	c := newCharacter(t)
	c.Stats.Agility = 900
	fireball := &content.ActiveSkill{ID: 5, Name: "Fireball", TriggerChance: 1.0, BaseDamage: 25,
		ScalingStat: character.Intelligence, Scaling: 0.5}
	enemy := &content.EnemyTemplate{ID: 1, Name: "Golem", Health: 100, Tier: 1}

	res := fixedSim().Simulate(c, enemy, []content.Skill{fireball})
	require.Equal(t, battle.Victory, res.Outcome)
	procs := 0
	for _, r := range res.Rounds {
		if r.Skill != "" {
			procs++
			assert.Equal(t, 30, r.Damage)
		}
	}
	assert.Equal(t, 1, procs)
	assert.Equal(t, "Fireball", res.Rounds[0].Skill)
	assert.Len(t, res.Rounds, 6)
}

func TestSimulate_EvasionAndCounter(t *testing.T) {
	c := newCharacter(t)
	sidestep := &content.PassiveSkill{ID: 1, Name: "Sidestep", EvasionPercent: 100, CounterPercent: 100}
	enemy := &content.EnemyTemplate{ID: 1, Name: "Fencer", Strength: 50, Agility: 900, Health: 40, Tier: 1}

	res := fixedSim().Simulate(c, enemy, []content.Skill{sidestep})
	require.Equal(t, battle.Victory, res.Outcome)
	require.Len(t, res.Rounds, 5)
	for _, r := range res.Rounds {
		assert.Equal(t, battle.SideEnemy, r.Attacker)
		assert.True(t, r.Evaded)
		assert.Equal(t, 8, r.Counter)
		assert.Zero(t, r.Damage)
	}
	assert.Equal(t, 100, c.CurrentHealth)
}

func TestSimulate_DamageReductionAndThorns(t *testing.T) {
	c := newCharacter(t)
	hide := &content.PassiveSkill{ID: 3, Name: "Iron Hide", DamageReductionPercent: 50, ThornsPercent: 50}
	enemy := &content.EnemyTemplate{ID: 1, Name: "Brute", Strength: 20, Agility: 900, Health: 1000, Tier: 1}

	res := fixedSim().Simulate(c, enemy, []content.Skill{hide})
	first := res.Rounds[0]
	assert.Equal(t, battle.SideEnemy, first.Attacker)
	// (20/2 + 10) − 2 defense = 18, halved to 9
	assert.Equal(t, 9, first.Damage)
	assert.Equal(t, 4, first.Reflected)
	assert.Equal(t, 996, first.EnemyHealth)
	assert.Equal(t, 91, first.PlayerHealth)
}

func TestSimulate_LifeStealCappedAtMaxHealth(t *testing.T) {
	c := newCharacter(t)
	c.CurrentHealth = 95
	c.Stats.Agility = 900
	leech := &content.PassiveSkill{ID: 2, Name: "Blood Thirst", LifeStealPercent: 100}
	enemy := &content.EnemyTemplate{ID: 1, Name: "Rat", Health: 40, Tier: 1}

	res := fixedSim().Simulate(c, enemy, []content.Skill{leech})
	assert.Equal(t, 5, res.Rounds[0].Healed)
	assert.Equal(t, 100, res.Rounds[0].PlayerHealth)
	assert.Equal(t, 100, c.CurrentHealth)
}

func TestReduceIncoming_CappedAt75Percent(t *testing.T) {
	assert.Equal(t, 25, battle.ReduceIncoming(100, 90))
	assert.Equal(t, 50, battle.ReduceIncoming(100, 50))
	assert.Equal(t, 100, battle.ReduceIncoming(100, 0))
	assert.Equal(t, 1, battle.ReduceIncoming(1, 75))
}

func TestSimulate_RewardsScaleWithTierDifference(t *testing.T) {
	c := newCharacter(t)
	c.Stats.Agility = 900
	c.Stats.Strength = 500
	strong := &content.EnemyTemplate{ID: 4, Name: "Witch", Health: 10, Tier: 4, ExperienceReward: 100}
	res := fixedSim().Simulate(c, strong, nil)
	require.Equal(t, battle.Victory, res.Outcome)
	assert.Equal(t, 130, res.Rewards.Experience)

	c = newCharacter(t)
	c.Stats.Agility = 900
	c.Stats.Strength = 500
	c.Level = 6
	weak := &content.EnemyTemplate{ID: 1, Name: "Rat", Health: 10, Tier: 1, ExperienceReward: 100}
	res = fixedSim().Simulate(c, weak, nil)
	assert.Equal(t, 50, res.Rewards.Experience)
}

func TestSimulate_BonusSkillRaisesGold(t *testing.T) {
	c := newCharacter(t)
	c.Stats.Agility = 900
	haggler := &content.BonusSkill{ID: 7, Name: "Haggler", GoldPercent: 20}
	enemy := &content.EnemyTemplate{ID: 1, Name: "Rat", Health: 10, Tier: 1, GoldReward: 20}

	res := fixedSim().Simulate(c, enemy, []content.Skill{haggler})
	assert.Equal(t, 30, res.Rewards.Gold)
}

func TestSimulate_DeterministicUnderSeed(t *testing.T) {
	enemy := &content.EnemyTemplate{ID: 2, Name: "Bandit", Strength: 14, Agility: 12, Intelligence: 8, Endurance: 10, Health: 60, Tier: 2, GoldReward: 25}
	run := func() battle.Result {
		c := newCharacter(t)
		rng := dice.NewLoggedRoller(dice.NewSeededSource(42), zap.NewNop())
		return battle.NewSimulator(rng, zap.NewNop()).Simulate(c, enemy, nil)
	}
	assert.Equal(t, run(), run())
}

func TestTierRange(t *testing.T) {
	lo, hi := battle.TierRange(1)
	assert.Equal(t, [2]int{1, 2}, [2]int{lo, hi})
	lo, hi = battle.TierRange(5)
	assert.Equal(t, [2]int{4, 6}, [2]int{lo, hi})
	lo, hi = battle.TierRange(30)
	assert.Equal(t, [2]int{10, 10}, [2]int{lo, hi})
}

func TestPickEnemy(t *testing.T) {
	rng := dice.NewLoggedRoller(dice.NewSequence([]int{1}, nil), zap.NewNop())
	candidates := []*content.EnemyTemplate{{ID: 1}, {ID: 2}, {ID: 3}}
	assert.Equal(t, int64(2), battle.PickEnemy(rng, candidates).ID)
	assert.Nil(t, battle.PickEnemy(rng, nil))
}

func TestProperty_Simulate_RoundsWellFormed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newCharacter(rt)
		c.Class = rapid.SampledFrom([]character.Class{character.Warrior, character.Mage, character.Rogue}).Draw(rt, "class")
		c.Stats.Agility = rapid.IntRange(0, 300).Draw(rt, "agility")
		c.Stats.Strength = rapid.IntRange(0, 300).Draw(rt, "strength")
		enemy := &content.EnemyTemplate{
			ID: 1, Name: "Foe", Tier: 1,
			Strength:  rapid.IntRange(0, 300).Draw(rt, "enemy_strength"),
			Agility:   rapid.IntRange(0, 300).Draw(rt, "enemy_agility"),
			Endurance: rapid.IntRange(0, 300).Draw(rt, "enemy_endurance"),
			Health:    rapid.IntRange(1, 2000).Draw(rt, "enemy_health"),
		}
		seed := rapid.Int64().Draw(rt, "seed")
		sim := battle.NewSimulator(dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop()), zap.NewNop())

		res := sim.Simulate(c, enemy, nil)
		prev := 0
		for i, r := range res.Rounds {
			assert.Equal(rt, i+1, r.Number)
			assert.GreaterOrEqual(rt, r.TimeMs, prev)
			assert.Less(rt, r.TimeMs, battle.TimeLimitMs)
			assert.GreaterOrEqual(rt, r.Damage, 1)
			prev = r.TimeMs
		}
		assert.GreaterOrEqual(rt, c.CurrentHealth, 1)
		assert.LessOrEqual(rt, c.CurrentHealth, c.MaxHealth)
		switch res.Outcome {
		case battle.Victory:
			assert.Zero(rt, res.EnemyHealthEnd)
		case battle.Defeat:
			assert.Zero(rt, res.PlayerHealthEnd)
		case battle.Draw:
			assert.Positive(rt, res.EnemyHealthEnd)
			assert.Positive(rt, res.PlayerHealthEnd)
		}
	})
}
