package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/repository/memory"
)

func TestCardSearch(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	for _, c := range []models.Card{
		{Name: "Lightning Bolt", Type: "Instant", Text: "deals 3 damage", IsActive: true},
		{Name: "Lightning Helix", Type: "Instant", IsActive: true},
		{Name: "Llanowar Elves", Type: "Creature", IsActive: true},
		{Name: "Lightning Rift", Type: "Enchantment", IsActive: false},
	} {
		_, err := s.Cards().Create(ctx, c)
		require.NoError(t, err)
	}
	svc := NewCardService(s, nil)

	got, err := svc.Search(ctx, "lightning", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lightning Bolt", got[0].Name)

	got, err = svc.Search(ctx, "lightning", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, "creature", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Llanowar Elves", got[0].Name)
}

func TestCardFindOne_InactiveIsNotFound(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	c, err := s.Cards().Create(ctx, models.Card{Name: "Chaos Orb"})
	require.NoError(t, err)

	_, err = NewCardService(s, nil).FindOne(ctx, c.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestLocationLifecycle(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	svc := NewLocationService(s, nil)

	madrid, err := svc.Create(ctx, LocationInput{Name: " Madrid ", Description: "capital"})
	require.NoError(t, err)
	assert.Equal(t, "Madrid", madrid.Name)

	_, err = svc.Create(ctx, LocationInput{Name: "Madrid"})
	assertKind(t, err, apperr.KindConflict)
	_, err = svc.Create(ctx, LocationInput{Name: "<i></i>"})
	assertKind(t, err, apperr.KindBadRequest)

	sevilla, err := svc.Create(ctx, LocationInput{Name: "Sevilla"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, sevilla.ID, LocationInput{Name: "Madrid"})
	assertKind(t, err, apperr.KindConflict)

	require.NoError(t, svc.Deactivate(ctx, sevilla.ID))
	_, err = svc.FindOne(ctx, sevilla.ID)
	assertKind(t, err, apperr.KindNotFound)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, madrid.ID, all[0].ID)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Total: 2, Active: 1, Inactive: 1}, stats)
}
