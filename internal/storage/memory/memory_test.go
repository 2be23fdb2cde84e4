package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/storage"
	"github.com/cory-johannsen/decade/internal/storage/memory"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	cat, err := content.NewCatalog(content.Set{
		Enemies:    []*content.EnemyTemplate{{ID: 1, Name: "Rat", Health: 10, Tier: 1}},
		Storybooks: []*content.Storybook{{ID: 1, Name: "Primer"}},
	})
	require.NoError(t, err)
	return memory.New(cat)
}

func createCharacter(t *testing.T, s *memory.Store) *character.Character {
	t.Helper()
	c, err := character.New("Ada", character.Mage)
	require.NoError(t, err)
	require.NoError(t, s.CreateCharacter(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}

func TestCharacter_ReadsAreIsolatedCopies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)

	got, err := s.CharacterByID(ctx, c.ID)
	require.NoError(t, err)
	got.Gold = 500
	_, err = got.Loadout.Equip(character.EquippedItem{Slot: 1, ItemID: 1})
	require.NoError(t, err)

	again, err := s.CharacterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Gold)
	assert.Zero(t, again.Loadout.Len())
}

func TestCharacter_UpdatePersistsScalarsAndLoadout(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)

	c.Gold = 42
	c.TotalTurns = 7
	_, err := c.Loadout.Equip(character.EquippedItem{Slot: 2, ItemID: 1, Name: "Primer"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateCharacter(ctx, c))

	got, err := s.CharacterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.Gold)
	assert.Equal(t, 7, got.TotalTurns)
	assert.Equal(t, []int64{1}, got.Loadout.ItemIDs())
	assert.Equal(t, c.CreatedAt, got.CreatedAt)
}

func TestCharacter_SkillsOnlyChangeThroughGrant(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)

	require.NoError(t, s.GrantSkill(ctx, c.ID, 5))
	require.NoError(t, s.GrantSkill(ctx, c.ID, 5))
	require.NoError(t, s.UpdateCharacter(ctx, c)) // c itself holds no skills

	got, err := s.CharacterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, got.Skills.IDs())
}

func TestCharacter_NotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CharacterByID(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCharacter(ctx, &character.Character{ID: 99}), storage.ErrNotFound)
	assert.ErrorIs(t, s.GrantSkill(ctx, 99, 1), storage.ErrNotFound)
}

func TestSession_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)

	sess := &storage.Session{CharacterID: c.ID, State: storage.SessionInProgress}
	require.NoError(t, s.CreateSession(ctx, sess))
	require.NotEqual(t, uuid.Nil, sess.ID)

	sess.State = storage.SessionCompleted
	sess.FinalScore = 1234
	require.NoError(t, s.UpdateSession(ctx, sess))

	got, err := s.SessionByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.SessionCompleted, got.State)
	assert.Equal(t, 1234, got.FinalScore)

	_, err = s.SessionByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.CreateSession(ctx, &storage.Session{CharacterID: 99}), storage.ErrNotFound)
}

func TestSessionByCharacter_ReturnsLatest(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)
	other := createCharacter(t, s)

	first := &storage.Session{CharacterID: c.ID, State: storage.SessionCompleted}
	require.NoError(t, s.CreateSession(ctx, first))
	require.NoError(t, s.CreateSession(ctx, &storage.Session{CharacterID: other.ID, State: storage.SessionInProgress}))
	second := &storage.Session{CharacterID: c.ID, State: storage.SessionInProgress}
	require.NoError(t, s.CreateSession(ctx, second))

	got, err := s.SessionByCharacter(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = s.SessionByCharacter(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLogs_AppendAndQuery(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := createCharacter(t, s)

	for _, o := range []battle.Outcome{battle.Victory, battle.Defeat, battle.Victory} {
		require.NoError(t, s.AppendBattleLog(ctx, storage.NewBattleLog(c.ID, battle.Result{EnemyID: 1, Outcome: o})))
	}
	require.NoError(t, s.AppendBattleLog(ctx, storage.NewBattleLog(c.ID+1, battle.Result{Outcome: battle.Victory})))

	n, err := s.CountVictories(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	logs, err := s.BattleLogs(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	sessionID := uuid.New()
	require.NoError(t, s.AppendGameEvent(ctx, &storage.GameEventRecord{SessionID: sessionID, CharacterID: c.ID, Turn: 1, Action: content.ActionRest, Success: true}))
	require.NoError(t, s.AppendGameEvent(ctx, &storage.GameEventRecord{SessionID: uuid.New(), CharacterID: c.ID, Turn: 1}))
	records, err := s.GameEvents(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, content.ActionRest, records[0].Action)
	assert.NotEqual(t, uuid.Nil, records[0].ID)
}

func TestContentReader_WrapsNotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e, err := s.EnemyByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rat", e.Name)

	_, err = s.EnemyByID(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.EventByID(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.SkillByID(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.ScenarioByID(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
