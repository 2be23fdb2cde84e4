package gameplay_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/progression"
	"github.com/cory-johannsen/decade/internal/gameplay"
	"github.com/cory-johannsen/decade/internal/storage"
	"github.com/cory-johannsen/decade/internal/storage/memory"
)

func baseSet() content.Set {
	return content.Set{
		Enemies: []*content.EnemyTemplate{
			{ID: 1, Name: "Rat", Health: 1, Tier: 1, ExperienceReward: 10, GoldReward: 4, ReputationReward: 1},
		},
		Skills: []content.Skill{
			&content.BonusSkill{ID: 1, Name: "Haggler", GoldPercent: 50},
		},
		Scenarios: []*content.TrainingScenario{
			{ID: 1, Name: "Lift Stones", Kind: content.KindTraining, PrimaryStat: character.Strength, PrimaryGain: 4,
				EnergyCost: 20, ExperienceReward: 10, RequiredLevel: 1},
			{ID: 2, Name: "Siege Drill", Kind: content.KindTraining, PrimaryStat: character.Strength, PrimaryGain: 12,
				EnergyCost: 30, ExperienceReward: 40, RequiredLevel: 5},
			{ID: 101, Name: "Read Histories", Kind: content.KindStudy, PrimaryStat: character.Intelligence, PrimaryGain: 3,
				EnergyCost: 10, ExperienceReward: 8, RequiredLevel: 1},
		},
		Storybooks: []*content.Storybook{
			{ID: 1, Name: "Primer", StatBonuses: map[character.Stat]int{character.Strength: 20}},
			{ID: 2, Name: "Almanac", StatBonuses: map[character.Stat]int{character.Agility: 10}},
		},
	}
}

func withEvents(set content.Set) content.Set {
	set.Events = []*content.RandomEvent{
		{
			ID: 1, Title: "Stranger", Description: "A stranger offers a bargain.", BaseProbability: 1.0,
			Actions: []content.Action{content.ActionExplore, content.ActionTrain},
			Choices: []content.EventChoice{
				{ID: 1, Text: "Take the coin", Success: content.Payload{Gold: 30}},
				{ID: 2, Text: "Learn to haggle", Success: content.Payload{GrantSkillID: 1, BattleEnemyID: 1}},
			},
		},
		{
			ID: 2, Title: "Dream", Description: "You dream of distant lands.", BaseProbability: 1.0,
			Actions: []content.Action{content.ActionRest},
			Choices: []content.EventChoice{{ID: 1, Text: "Wake", Success: content.Payload{Experience: 5}}},
		},
	}
	return set
}

type fixture struct {
	svc   *gameplay.Service
	store *memory.Store
	seq   *dice.Sequence
	sess  *storage.Session
	char  *character.Character
}

func newFixture(t *testing.T, set content.Set, ints []int, floats []float64) *fixture {
	t.Helper()
	cat, err := content.NewCatalog(set)
	require.NoError(t, err)
	store := memory.New(cat)
	seq := dice.NewSequence(ints, floats)
	rng := dice.NewLoggedRoller(seq, zap.NewNop())
	svc := gameplay.NewService(store, rng, dice.MustParse("2d10"), zap.NewNop())
	sess, c, err := svc.CreateGame(context.Background(), "Ada", character.Warrior)
	require.NoError(t, err)
	return &fixture{svc: svc, store: store, seq: seq, sess: sess, char: c}
}

func (f *fixture) mutate(t *testing.T, fn func(c *character.Character)) {
	t.Helper()
	ctx := context.Background()
	c, err := f.store.CharacterByID(ctx, f.char.ID)
	require.NoError(t, err)
	fn(c)
	require.NoError(t, f.store.UpdateCharacter(ctx, c))
}

func (f *fixture) reload(t *testing.T) *character.Character {
	t.Helper()
	c, err := f.store.CharacterByID(context.Background(), f.char.ID)
	require.NoError(t, err)
	return c
}

func TestCreateGame(t *testing.T) {
	f := newFixture(t, baseSet(), nil, nil)
	assert.Equal(t, storage.SessionInProgress, f.sess.State)
	assert.Equal(t, f.char.ID, f.sess.CharacterID)
	assert.NotEqual(t, uuid.Nil, f.sess.ID)
	assert.Equal(t, 1, f.char.CurrentYear)
	assert.Equal(t, 1, f.char.CurrentMonth)
}

func TestResolveTurn_RestAdvancesCalendar(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, []float64{0.5})
	f.mutate(t, func(c *character.Character) {
		c.CurrentEnergy = 20
		c.CurrentHealth = 50
	})

	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionRest, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Event)
	assert.Equal(t, 1, res.Turn)
	assert.Equal(t, 2, res.Month)
	require.Len(t, res.Changes, 2)
	assert.Equal(t, 50, res.Changes[0].Delta)
	assert.Equal(t, 25, res.Changes[1].Delta)

	c := f.reload(t)
	assert.Equal(t, 70, c.CurrentEnergy)
	assert.Equal(t, 75, c.CurrentHealth)
	assert.Equal(t, 1, c.TotalTurns)

	records, err := f.store.GameEvents(context.Background(), f.sess.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, content.ActionRest, records[0].Action)
	assert.Equal(t, 1, records[0].Month, "records the month the action happened in")
	assert.True(t, records[0].Success)
}

func TestResolveTurn_RestMayTriggerEvent(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, []float64{0.1, 0.0})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionRest, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Event)
	assert.Equal(t, int64(2), res.Event.ID)
	assert.Contains(t, res.Narrative, "Dream")
}

func TestResolveTurn_TrainPicksHighestEligibleScenario(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionTrain, 0)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Training)
	assert.Equal(t, int64(1), res.Training.ScenarioID, "level 5 drill is out of reach")

	c := f.reload(t)
	assert.Equal(t, 14, c.Stats.Strength, "floor(4 × 1.125)")
	assert.Equal(t, 80, c.CurrentEnergy)
	assert.Equal(t, 10, c.Experience)
	assert.Equal(t, 1, c.TotalTurns)
}

func TestResolveTurn_TrainMayTriggerEvent(t *testing.T) {
	// failure, variance, bonus, event roll, event pick.
	f := newFixture(t, withEvents(baseSet()), nil, []float64{0.5, 0.5, 0.5, 0.1, 0.0})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionTrain, 1)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Event)
	assert.Equal(t, int64(1), res.Event.ID)
}

func TestResolveTurn_StudyUsesTarget(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionStudy, 101)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, int64(101), res.Training.ScenarioID)
	assert.Equal(t, 13, f.reload(t).Stats.Intelligence)
}

func TestResolveTurn_PreconditionFailureDoesNotAdvance(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	f.mutate(t, func(c *character.Character) { c.CurrentEnergy = 5 })

	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionTrain, 1)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Changes)
	assert.Contains(t, res.Narrative, "insufficient energy")

	c := f.reload(t)
	assert.Equal(t, 0, c.TotalTurns)
	assert.Equal(t, 1, c.CurrentMonth)
	assert.Equal(t, 5, c.CurrentEnergy)

	records, err := f.store.GameEvents(context.Background(), f.sess.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
}

func TestResolveTurn_ExploreFindsGoldWithoutEvent(t *testing.T) {
	// 2d10 draws 4 and 5 (dice 5 and 6); luck 10 adds 1.
	f := newFixture(t, baseSet(), []int{4, 5}, []float64{0.5})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionExplore, 0)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Nil(t, res.Event)

	c := f.reload(t)
	assert.Equal(t, 12, c.Gold)
	assert.Equal(t, 90, c.CurrentEnergy)
	assert.Equal(t, 2, f.seq.IntDraws(), "no event candidates means no pick draw")
	assert.Equal(t, 10+10+10+10+10+10, c.Stats.Total(), "no micro-gain above the 20% roll")
}

func TestResolveTurn_ExploreGoldExpression(t *testing.T) {
	tests := []struct {
		name  string
		expr  dice.Expression
		ints  []int
		gold  int
		draws int
	}{
		// Zero expression falls back to 2d10: dice 5 and 6, plus luck 10 / 10.
		{name: "default", expr: dice.Expression{}, ints: []int{4, 5}, gold: 12, draws: 2},
		{name: "custom", expr: dice.MustParse("1d4+3"), ints: []int{2}, gold: 3 + 3 + 1, draws: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := content.NewCatalog(baseSet())
			require.NoError(t, err)
			store := memory.New(cat)
			seq := dice.NewSequence(tt.ints, []float64{0.5})
			svc := gameplay.NewService(store, dice.NewLoggedRoller(seq, zap.NewNop()), tt.expr, zap.NewNop())
			ctx := context.Background()
			sess, c, err := svc.CreateGame(ctx, "Ada", character.Warrior)
			require.NoError(t, err)

			_, err = svc.ResolveTurn(ctx, sess.ID, content.ActionExplore, 0)
			require.NoError(t, err)
			got, err := svc.Character(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.gold, got.Gold)
			assert.Equal(t, tt.draws, seq.IntDraws())
		})
	}
}

func TestResolveTurn_ExploreMicroGain(t *testing.T) {
	f := newFixture(t, baseSet(), []int{4, 5, 2}, []float64{0.1})
	_, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionExplore, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, f.reload(t).Stats.Intelligence)
}

func TestResolveTurn_ExploreGoldHonorsBonusSkill(t *testing.T) {
	f := newFixture(t, baseSet(), []int{4, 5}, []float64{0.5})
	require.NoError(t, f.store.GrantSkill(context.Background(), f.char.ID, 1))
	_, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionExplore, 0)
	require.NoError(t, err)
	assert.Equal(t, 18, f.reload(t).Gold, "12 + 50%")
}

func TestResolveTurn_ExploreTriggersEventInsteadOfGold(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, []float64{0.0})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionExplore, 0)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Event)
	assert.Equal(t, "Stranger", res.Event.Title)
	assert.Equal(t, 0, f.reload(t).Gold)
}

func TestResolveTurn_ExploreTooTired(t *testing.T) {
	f := newFixture(t, baseSet(), nil, nil)
	f.mutate(t, func(c *character.Character) { c.CurrentEnergy = 9 })
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionExplore, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Turn)
}

func TestResolveTurn_BattleVictoryIsLogged(t *testing.T) {
	f := newFixture(t, baseSet(), []int{9}, []float64{0.5})
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionBattle, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Battle)
	assert.Equal(t, battle.Victory, res.Battle.Outcome)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Turn)

	n, err := f.store.CountVictories(context.Background(), f.char.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 85, f.reload(t).CurrentEnergy)
}

func TestResolveTurn_FledBattleDoesNotAdvance(t *testing.T) {
	f := newFixture(t, baseSet(), []int{9}, []float64{0.5})
	f.mutate(t, func(c *character.Character) { c.CurrentEnergy = 10 })
	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionBattle, 1)
	require.NoError(t, err)
	assert.Equal(t, battle.Fled, res.Battle.Outcome)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Turn)

	logs, err := f.store.BattleLogs(context.Background(), f.char.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestResolveTurn_CompletesAtMaxTurns(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	f.mutate(t, func(c *character.Character) {
		c.TotalTurns = character.MaxTurns - 1
		c.CurrentYear = 10
		c.CurrentMonth = 12
	})

	res, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionRest, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Completed)
	assert.Equal(t, character.MaxTurns, res.Turn)
	assert.Equal(t, 11, res.Year)
	assert.Equal(t, 1, res.Month)

	c := f.reload(t)
	sess, err := f.svc.Session(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.SessionCompleted, sess.State)
	assert.Equal(t, progression.FinalScore(c, 0), sess.FinalScore)
	assert.Equal(t, string(progression.DetermineEnding(c)), sess.Ending)
	require.NotNil(t, sess.CompletedAt)
	assert.Equal(t, res.FinalScore, sess.FinalScore)

	again, err := f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionTrain, 1)
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Equal(t, gameplay.JourneyEnded, again.Narrative)
	assert.Equal(t, character.MaxTurns, f.reload(t).TotalTurns)

	records, err := f.store.GameEvents(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1, "the ended journey records nothing")
}

func TestResolveTurn_FullTimelineCompletes(t *testing.T) {
	cat, err := content.NewCatalog(withEvents(baseSet()))
	require.NoError(t, err)
	store := memory.New(cat)
	rng := dice.NewLoggedRoller(dice.NewSeededSource(42), zap.NewNop())
	svc := gameplay.NewService(store, rng, dice.MustParse("2d10"), zap.NewNop())
	ctx := context.Background()
	sess, _, err := svc.CreateGame(ctx, "Ada", character.Mage)
	require.NoError(t, err)

	plan := []content.Action{content.ActionTrain, content.ActionStudy, content.ActionExplore, content.ActionRest}
	var last gameplay.TurnResult
	successes := 0
	for i := 0; i < 1000 && !last.Completed; i++ {
		last, err = svc.ResolveTurn(ctx, sess.ID, plan[i%len(plan)], 0)
		require.NoError(t, err)
		if last.Success {
			successes++
		}
	}
	require.True(t, last.Completed)
	assert.Equal(t, character.MaxTurns, successes)
	assert.Equal(t, 11, last.Year)
	assert.Equal(t, 1, last.Month)
}

func TestResolveTurn_NotFound(t *testing.T) {
	f := newFixture(t, baseSet(), nil, nil)
	ctx := context.Background()

	_, err := f.svc.ResolveTurn(ctx, uuid.New(), content.ActionRest, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.svc.ResolveTurn(ctx, f.sess.ID, content.ActionTrain, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.svc.ResolveTurn(ctx, f.sess.ID, content.ActionBattle, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	records, err := f.store.GameEvents(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Empty(t, records, "failed lookups persist nothing")
}

func TestResolveTraining_DoesNotAdvanceCalendar(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	res, err := f.svc.ResolveTraining(context.Background(), f.char.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)

	c := f.reload(t)
	assert.Equal(t, 14, c.Stats.Strength)
	assert.Equal(t, 0, c.TotalTurns)

	_, err = f.svc.ResolveTraining(context.Background(), f.char.ID, 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.svc.ResolveTraining(context.Background(), 404, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolveBattle_ExplicitEnemy(t *testing.T) {
	f := newFixture(t, baseSet(), []int{9}, []float64{0.5})
	res, err := f.svc.ResolveBattle(context.Background(), f.char.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, battle.Victory, res.Outcome)
	assert.Equal(t, "Rat", res.EnemyName)

	logs, err := f.store.BattleLogs(context.Background(), f.char.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(1), logs[0].EnemyID)
	assert.Equal(t, 10, f.reload(t).Experience)

	_, err = f.svc.ResolveBattle(context.Background(), f.char.ID, 77)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolveBattle_NoCandidatesFlees(t *testing.T) {
	set := baseSet()
	set.Enemies = nil
	f := newFixture(t, set, nil, nil)
	res, err := f.svc.ResolveBattle(context.Background(), f.char.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, battle.Fled, res.Outcome)
	assert.False(t, res.Success)
}

func TestResolveBattle_SkipsOutOfSeasonEnemies(t *testing.T) {
	set := baseSet()
	set.Enemies = []*content.EnemyTemplate{
		{ID: 3, Name: "Winter Wolf", Health: 1, Tier: 1, ExperienceReward: 10,
			Seasons: []character.Season{character.Winter}},
	}
	f := newFixture(t, set, []int{9}, []float64{0.5})
	ctx := context.Background()

	f.mutate(t, func(c *character.Character) { c.CurrentMonth = 7 })
	res, err := f.svc.ResolveBattle(ctx, f.char.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, battle.Fled, res.Outcome)
	assert.Equal(t, "No foe crosses your path.", res.Narrative)
	logs, err := f.store.BattleLogs(ctx, f.char.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	turn, err := f.svc.ResolveTurn(ctx, f.sess.ID, content.ActionBattle, 0)
	require.NoError(t, err)
	assert.False(t, turn.Success)
	assert.Equal(t, 0, turn.Turn)

	f.mutate(t, func(c *character.Character) { c.CurrentMonth = 1 })
	res, err = f.svc.ResolveBattle(ctx, f.char.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, battle.Victory, res.Outcome)
	assert.Equal(t, "Winter Wolf", res.EnemyName)
}

func TestResolveEventChoice_GrantsSkillAndLogsBattle(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), []int{9}, []float64{0.5})
	res, err := f.svc.ResolveEventChoice(context.Background(), f.char.ID, 1, 2)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(1), res.LearnedSkillID)
	require.NotNil(t, res.Battle)
	assert.Equal(t, battle.Victory, res.Battle.Outcome)

	c := f.reload(t)
	assert.True(t, c.Skills.Has(1))
	logs, err := f.store.BattleLogs(context.Background(), f.char.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestResolveEventChoice_FledBattleIsNotLogged(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), []int{9}, []float64{0.5})
	f.mutate(t, func(c *character.Character) { c.CurrentEnergy = 10 })
	res, err := f.svc.ResolveEventChoice(context.Background(), f.char.ID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, res.Battle)
	assert.Equal(t, battle.Fled, res.Battle.Outcome)

	assert.True(t, f.reload(t).Skills.Has(1), "the skill grant still applies")
	logs, err := f.store.BattleLogs(context.Background(), f.char.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestResolveEventChoice_RecordsChoice(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, nil)
	ctx := context.Background()
	res, err := f.svc.ResolveEventChoice(ctx, f.char.ID, 1, 1)
	require.NoError(t, err)

	records, err := f.store.GameEvents(ctx, f.sess.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, content.ActionChoice, r.Action)
	assert.Equal(t, int64(1), r.EventID)
	assert.Equal(t, int64(1), r.ChoiceID)
	assert.True(t, r.Success)
	assert.Equal(t, res.Narrative, r.Narrative)
	assert.Equal(t, res.Changes, r.Changes)
	assert.Equal(t, f.char.ID, r.CharacterID)
}

func TestResolveEventChoice_AppliesPayload(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, nil)
	res, err := f.svc.ResolveEventChoice(context.Background(), f.char.ID, 1, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 30, f.reload(t).Gold)
}

func TestResolveEventChoice_UnknownIDs(t *testing.T) {
	f := newFixture(t, withEvents(baseSet()), nil, nil)
	_, err := f.svc.ResolveEventChoice(context.Background(), f.char.ID, 1, 9)
	assert.ErrorIs(t, err, gameplay.ErrChoiceNotFound)
	_, err = f.svc.ResolveEventChoice(context.Background(), f.char.ID, 9, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, f.reload(t).Gold)

	records, err := f.store.GameEvents(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEquipItem(t *testing.T) {
	f := newFixture(t, baseSet(), nil, nil)
	ctx := context.Background()

	res, err := f.svc.EquipItem(ctx, f.char.ID, 6, 1)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = f.svc.EquipItem(ctx, f.char.ID, 1, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Displaced)

	res, err = f.svc.EquipItem(ctx, f.char.ID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, res.Displaced)
	assert.Equal(t, "Primer", res.Displaced.Name)
	assert.Equal(t, []int64{2}, f.reload(t).Loadout.ItemIDs())

	_, err = f.svc.EquipItem(ctx, f.char.ID, 2, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	res, err = f.svc.UnequipItem(ctx, f.char.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Removed)
	assert.Equal(t, 0, f.reload(t).Loadout.Len())

	res, err = f.svc.UnequipItem(ctx, f.char.ID, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEquippedBookBoostsTraining(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	_, err := f.svc.EquipItem(context.Background(), f.char.ID, 3, 1)
	require.NoError(t, err)
	_, err = f.svc.ResolveTurn(context.Background(), f.sess.ID, content.ActionTrain, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, f.reload(t).Stats.Strength, "floor(4 × 1.2 × 1.125)")
}

func TestPlay_RunsToCompletion(t *testing.T) {
	cat, err := content.NewCatalog(withEvents(baseSet()))
	require.NoError(t, err)
	store := memory.New(cat)
	rng := dice.NewLoggedRoller(dice.NewSeededSource(7), zap.NewNop())
	svc := gameplay.NewService(store, rng, dice.MustParse("2d10"), zap.NewNop())
	ctx := context.Background()
	sess, c, err := svc.CreateGame(ctx, "Ada", character.Rogue)
	require.NoError(t, err)

	plan, err := gameplay.ParsePlan([]string{"train", "explore", "battle", "rest", "study", "rest"})
	require.NoError(t, err)
	sum, err := svc.Play(ctx, sess.ID, plan, gameplay.DefaultMaxAttempts)
	require.NoError(t, err)
	assert.True(t, sum.Completed)
	assert.Equal(t, character.MaxTurns, sum.Turns)
	assert.GreaterOrEqual(t, sum.Attempts, sum.Turns)

	records, err := store.GameEvents(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, records, sum.Attempts+sum.Events, "one record per attempt and per answered choice")

	victories, err := store.CountVictories(ctx, c.ID)
	require.NoError(t, err)
	final, err := svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, progression.FinalScore(final, victories), sum.FinalScore)
}

func TestPlay_StopsAtMaxAttempts(t *testing.T) {
	f := newFixture(t, baseSet(), nil, []float64{0.5})
	sum, err := f.svc.Play(context.Background(), f.sess.ID, []content.Action{content.ActionRest}, 3)
	require.NoError(t, err)
	assert.False(t, sum.Completed)
	assert.Equal(t, 3, sum.Attempts)
	assert.Equal(t, 3, sum.Turns)
}

func TestPlay_AnswersRaisedEvents(t *testing.T) {
	// Explore raises the stranger; its first choice pays 30 gold.
	f := newFixture(t, withEvents(baseSet()), nil, []float64{0.0})
	sum, err := f.svc.Play(context.Background(), f.sess.ID, []content.Action{content.ActionExplore}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Events)
	assert.Equal(t, 30, f.reload(t).Gold)
}

func TestParsePlan_RejectsUnknownAction(t *testing.T) {
	_, err := gameplay.ParsePlan([]string{"train", "nap"})
	assert.Error(t, err)
	_, err = gameplay.ParsePlan(nil)
	assert.Error(t, err)
}
