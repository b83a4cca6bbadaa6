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

const messagesCollection = "messages"

// MessageRepository implements ports.MessageRepository on the messages
// collection. All listings sort by timeStamp ascending, which is the only
// ordering the conversation view needs.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection(messagesCollection)}
}

type mongoMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SenderID   string             `bson:"senderId"`
	ReceiverID string             `bson:"receiverId,omitempty"`
	GroupID    string             `bson:"groupId,omitempty"`
	Body       string             `bson:"message"`
	Timestamp  time.Time          `bson:"timeStamp"`
}

func (mm *mongoMessage) toDomain() *domain.Message {
	return &domain.Message{
		ID:         mm.ID.Hex(),
		SenderID:   mm.SenderID,
		ReceiverID: mm.ReceiverID,
		GroupID:    mm.GroupID,
		Body:       mm.Body,
		Timestamp:  mm.Timestamp.UTC(),
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	doc := mongoMessage{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		GroupID:    msg.GroupID,
		Body:       msg.Body,
		Timestamp:  msg.Timestamp,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMessageNotFound
	}

	var mm mongoMessage
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return mm.toDomain(), nil
}

// FindDirect returns both directions of a direct conversation in timestamp
// order, so retrieve(A,B) and retrieve(B,A) see the same sequence.
func (r *MessageRepository) FindDirect(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": userA, "receiverId": userB},
		bson.M{"senderId": userB, "receiverId": userA},
	}}
	return r.findSorted(ctx, filter)
}

func (r *MessageRepository) FindByGroup(ctx context.Context, groupID string) ([]*domain.Message, error) {
	return r.findSorted(ctx, bson.M{"groupId": groupID})
}

func (r *MessageRepository) findSorted(ctx context.Context, filter bson.M) ([]*domain.Message, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timeStamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	messages := make([]*domain.Message, 0)
	for cur.Next(ctx) {
		var mm mongoMessage
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, mm.toDomain())
	}
	return messages, cur.Err()
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMessageNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes conversation reads rely on.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "timeStamp", Value: 1}}},
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timeStamp", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
