package workflow

import (
	"context"

	"go.uber.org/zap"

	"eventhub/models"
)

type Groups struct {
	tx     models.TxRunner
	groups models.GroupRepository
	log    *zap.Logger
}

func NewGroups(tx models.TxRunner, g models.GroupRepository, log *zap.Logger) *Groups {
	if log == nil {
		log = zap.NewNop()
	}
	return &Groups{tx: tx, groups: g, log: log}
}

// Create inserts the group and registers the creator as both administrator and member.
func (w *Groups) Create(ctx context.Context, name, description, admin string) (models.Group, error) {
	g := models.Group{GroupName: name, Description: description}
	err := w.tx.WithTx(ctx, func(ctx context.Context) error {
		taken, err := w.groups.NameTaken(ctx, name)
		if err != nil {
			return err
		}
		if taken {
			return models.Conflict("Group name already exists")
		}
		if err := w.groups.Create(ctx, &g); err != nil {
			return err
		}
		if err := w.groups.AddAdmin(ctx, admin, g.GroupID); err != nil {
			return err
		}
		return w.groups.AddMember(ctx, admin, g.GroupID)
	})
	if err != nil {
		return models.Group{}, models.StoreFailure("Error creating group", err)
	}

	w.log.Info("group created", zap.Int64("group_id", g.GroupID), zap.String("admin", admin))
	return g, nil
}

func (w *Groups) Join(ctx context.Context, username string, groupID int64) error {
	ok, err := w.groups.Exists(ctx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("Group not found")
	}
	return w.groups.AddMember(ctx, username, groupID)
}

func (w *Groups) Leave(ctx context.Context, username string, groupID int64) error {
	return w.groups.RemoveMember(ctx, username, groupID)
}
