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

	"github.com/messagely/messagely-api/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Phone        string             `bson:"phone"`
	JoinedAt     int64              `bson:"joined_at"`
	LastLoginAt  int64              `bson:"last_login_at"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		Username:    d.Username,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Phone:       d.Phone,
		JoinedAt:    fromMillis(d.JoinedAt),
		LastLoginAt: fromMillis(d.LastLoginAt),
	}
}

// profileProjection keeps the password hash out of every read except PasswordHash.
var profileProjection = bson.M{"password_hash": 0}

func (r *UserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDocument{
		Username:     user.Username,
		PasswordHash: passwordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		JoinedAt:     toMillis(user.JoinedAt),
		LastLoginAt:  toMillis(user.LastLoginAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	opts := options.FindOne().SetProjection(profileProjection)
	if err := r.col.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := doc.toDomain()
	return &u, nil
}

func (r *UserRepository) FindByUsernames(ctx context.Context, usernames []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"username": bson.M{"$in": usernames}}, options.Find().SetProjection(profileProjection))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, d := range docs {
		out[d.Username] = d.toDomain()
	}
	return out, nil
}

func (r *UserRepository) PasswordHash(ctx context.Context, username string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		PasswordHash string `bson:"password_hash"`
	}
	opts := options.FindOne().SetProjection(bson.M{"password_hash": 1})
	if err := r.col.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("find password hash: %w", err)
	}
	return doc.PasswordHash, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"last_login_at": toMillis(at)}},
	)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"username": 1, "first_name": 1, "last_name": 1}).
		SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]domain.UserSummary, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain().Summary()
	}
	return out, nil
}

// EnsureIndexes creates the unique username index the duplicate check relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
