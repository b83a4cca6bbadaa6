package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatwire/chat-system/internal/core/domain"
)

const groupsCollection = "groups"

// GroupRepository implements ports.GroupRepository on the groups collection.
type GroupRepository struct {
	coll *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{coll: db.Collection(groupsCollection)}
}

type mongoGroup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"groupName"`
	AdminID   string             `bson:"adminId"`
	Members   []string           `bson:"members"`
	CreatedAt int64              `bson:"created_at"`
}

func (mg *mongoGroup) toDomain() *domain.Group {
	members := mg.Members
	if members == nil {
		members = []string{}
	}
	return &domain.Group{
		ID:        mg.ID.Hex(),
		Name:      mg.Name,
		AdminID:   mg.AdminID,
		Members:   members,
		CreatedAt: unixToTime(mg.CreatedAt),
	}
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	doc := mongoGroup{
		Name:      group.Name,
		AdminID:   group.AdminID,
		Members:   group.Members,
		CreatedAt: group.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrGroupExists
		}
		return nil, fmt.Errorf("insert group: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrGroupNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *GroupRepository) FindByName(ctx context.Context, name string) (*domain.Group, error) {
	return r.findOne(ctx, bson.M{"groupName": name})
}

func (r *GroupRepository) findOne(ctx context.Context, filter bson.M) (*domain.Group, error) {
	var mg mongoGroup
	if err := r.coll.FindOne(ctx, filter).Decode(&mg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return mg.toDomain(), nil
}

func (r *GroupRepository) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	return r.updateByID(ctx, groupID, bson.M{
		"$addToSet": bson.M{"members": bson.M{"$each": userIDs}},
	})
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID string, userID string) error {
	return r.updateByID(ctx, groupID, bson.M{
		"$pull": bson.M{"members": userID},
	})
}

func (r *GroupRepository) SetAdmin(ctx context.Context, groupID string, userID string) error {
	return r.updateByID(ctx, groupID, bson.M{
		"$set": bson.M{"adminId": userID},
	})
}

func (r *GroupRepository) updateByID(ctx context.Context, groupID string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return domain.ErrGroupNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrGroupNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index group creation relies on.
func (r *GroupRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "groupName", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
