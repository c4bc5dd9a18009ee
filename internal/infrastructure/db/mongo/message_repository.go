package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/messagely/messagely-api/internal/core/domain"
)

const collectionMessages = "messages"

// MessageRepository implements ports.MessageRepository using MongoDB.
type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

type messageDocument struct {
	ID           string `bson:"_id"`
	FromUsername string `bson:"from_username"`
	ToUsername   string `bson:"to_username"`
	Body         string `bson:"body"`
	SentAt       int64  `bson:"sent_at"`
	ReadAt       *int64 `bson:"read_at"`
}

func (d messageDocument) toDomain() domain.Message {
	m := domain.Message{
		ID:           d.ID,
		FromUsername: d.FromUsername,
		ToUsername:   d.ToUsername,
		Body:         d.Body,
		SentAt:       fromMillis(d.SentAt),
	}
	if d.ReadAt != nil {
		t := fromMillis(*d.ReadAt)
		m.ReadAt = &t
	}
	return m
}

// Create inserts a new message document.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := messageDocument{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       toMillis(m.SentAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc messageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	m := doc.toDomain()
	return &m, nil
}

// MarkRead sets read_at only while it is still null, so concurrent calls
// leave a single stamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": toMillis(at)}},
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) ListBySender(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, bson.M{"from_username": username})
}

func (r *MessageRepository) ListByRecipient(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, bson.M{"to_username": username})
}

func (r *MessageRepository) list(ctx context.Context, filter bson.M) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	var docs []messageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	out := make([]domain.Message, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// EnsureIndexes creates indexes on the messages collection.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_username", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "to_username", Value: 1}, {Key: "sent_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
