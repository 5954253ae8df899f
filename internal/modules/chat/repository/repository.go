package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/survivehub/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	Collection = "chats"
	IndexName  = "participants_updated_idx"
)

var ErrNotFound = errors.New("chat not found")

// ChatRepository stores each conversation as one document with its messages embedded.
type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	FindBetween(ctx context.Context, a, b string) (*entity.Chat, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Chat, error)
	// PushMessage appends msg, marks the sender read and everyone else unread, and reopens the chat.
	PushMessage(ctx context.Context, id primitive.ObjectID, msg entity.Message) error
	MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error
	SetOpen(ctx context.Context, id primitive.ObjectID, userID string, open bool) error
	ListOpen(ctx context.Context, userID string) ([]entity.Chat, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type mongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo ensures the listing index exists. A failed index build is logged and the repository still works.
func NewMongoRepo(coll *mongo.Collection, log *zap.SugaredLogger) ChatRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "participants.user", Value: 1}, {Key: "updated_at", Value: -1}},
		Options: options.Index().SetName(IndexName),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		log.Warnw("chat index create failed", "collection", coll.Name(), "index", IndexName, "error", err)
	}
	return &mongoRepo{coll: coll}
}

func (r *mongoRepo) Create(ctx context.Context, chat *entity.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return err
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoRepo) findOne(ctx context.Context, filter bson.M) (*entity.Chat, error) {
	var chat entity.Chat
	if err := r.coll.FindOne(ctx, filter).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *mongoRepo) FindBetween(ctx context.Context, a, b string) (*entity.Chat, error) {
	return r.findOne(ctx, bson.M{
		"participants": bson.M{"$size": 2},
		"$and": bson.A{
			bson.M{"participants.user": a},
			bson.M{"participants.user": b},
		},
	})
}

func (r *mongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepo) PushMessage(ctx context.Context, id primitive.ObjectID, msg entity.Message) error {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"participants.$[me].read":    true,
			"participants.$[other].read": false,
			"open":                       true,
			"updated_at":                 time.Now().UTC(),
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"me.user": msg.Author},
			bson.M{"other.user": bson.M{"$ne": msg.Author}},
		},
	})

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "participants.user": msg.Author}, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "participants.user": userID},
		bson.M{"$set": bson.M{"participants.$.read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) SetOpen(ctx context.Context, id primitive.ObjectID, userID string, open bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "participants.user": userID},
		bson.M{"$set": bson.M{"open": open}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) ListOpen(ctx context.Context, userID string) ([]entity.Chat, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"participants.user": userID, "open": true},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []entity.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *mongoRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"open":         true,
		"participants": bson.M{"$elemMatch": bson.M{"user": userID, "read": false}},
	})
}
