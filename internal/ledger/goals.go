package ledger

import (
	"context"

	"github.com/google/uuid"

	"dauvest/internal/core"
	"dauvest/internal/storage"
)

// Goals is the savings goal ledger. New goals go last.
type Goals struct {
	store *Store[core.Goal]
	newID func() string
}

func OpenGoals(ctx context.Context, kv storage.KV) (*Goals, error) {
	s, err := Open(ctx, kv, storage.KeyGoals, Append, func(g core.Goal) string { return g.ID })
	if err != nil {
		return nil, err
	}
	return &Goals{store: s, newID: uuid.NewString}, nil
}

func (l *Goals) List() []core.Goal { return l.store.List() }

func (l *Goals) Get(id string) (core.Goal, bool) { return l.store.Get(id) }

func (l *Goals) Create(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	g := buildGoal(l.newID(), in)
	if err := l.store.Insert(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (l *Goals) Update(ctx context.Context, id string, in core.GoalInput) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	g := buildGoal(id, in)
	if err := l.store.Replace(ctx, id, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (l *Goals) Delete(ctx context.Context, id string) error {
	return l.store.Remove(ctx, id)
}

func buildGoal(id string, in core.GoalInput) core.Goal {
	in = in.Normalize()
	return core.Goal{
		ID:            id,
		Title:         in.Title,
		CurrentAmount: in.CurrentAmount,
		TargetAmount:  in.TargetAmount,
		Color:         in.Color,
	}
}
