// Package mongodb stores users as documents with their sessions embedded, mirroring the
// collection layout of the original service.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/echopind/echopind_backend/internal/models"
	"github.com/echopind/echopind_backend/internal/utils/mapping"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const usersCollection = "users"

// UserRepository is the document-store implementation of the credential store.
type UserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

// Ensure UserRepository implements portsrepo.UserRepositoryFacade
var (
	_ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)
	_ portsrepo.HealthChecker        = (*UserRepository)(nil)
)

func NewUserRepository(client *mongo.Client, database string) *UserRepository {
	return &UserRepository{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}
}

// NewRepositoryProvider wires the document store and makes sure its indexes exist.
func NewRepositoryProvider(ctx context.Context, client *mongo.Client, database string) (portsrepo.RepositoryProvider, error) {
	repo := NewUserRepository(client, database)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	return portsrepo.RepositoryProvider{
		UserRepo: repo,
		Health:   repo,
		Close:    func() { _ = client.Disconnect(context.Background()) },
	}, nil
}

// EnsureIndexes creates the unique email index and the session digest index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "refreshTokens.tokenHash", Value: 1}},
			Options: options.Index().SetName("refresh_token_hash"),
		},
		{
			Keys:    bson.D{{Key: "userType", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_type_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func translateError(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D, op string) (*domain.User, error) {
	var m models.User
	if err := r.users.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, translateError(err, op)
	}
	u, err := mapping.ToDomainUser(m)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	m.Email = domain.NormalizeEmail(m.Email)
	if _, err := r.users.InsertOne(ctx, m); err != nil {
		return translateError(err, "failed to save user")
	}
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: userID}}, fmt.Sprintf("failed to find user by ID %s", userID))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}}, "failed to find user by email")
}

func (r *UserRepository) FindUserByRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, liveSessionFilter(tokenHash, now), "failed to find user by refresh token")
}

func liveSessionFilter(tokenHash string, now time.Time) bson.D {
	return bson.D{{Key: "refreshTokens", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "tokenHash", Value: tokenHash},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now}}},
	}}}}}
}

func (r *UserRepository) FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	query := bson.D{}
	if filter.Role != domain.RoleUnknown {
		query = append(query, bson.E{Key: "userType", Value: filter.Role.String()})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullName", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
			bson.D{{Key: "school", Value: pattern}},
		}})
	}

	total, err := r.users.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(max(filter.Offset, 0))).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "refreshTokens", Value: 0}})
	cursor, err := r.users.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	var ms []models.User
	if err := cursor.All(ctx, &ms); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}
	users, err := mapping.ToDomainUserSlice(ms)
	if err != nil {
		return nil, 0, err
	}
	return users, int(total), nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullName", Value: m.FullName},
		{Key: "email", Value: domain.NormalizeEmail(m.Email)},
		{Key: "phone", Value: m.Phone},
		{Key: "address", Value: m.Address},
		{Key: "dateOfBirth", Value: m.DateOfBirth},
		{Key: "studentId", Value: m.StudentID},
		{Key: "school", Value: m.School},
		{Key: "grade", Value: m.Grade},
		{Key: "profilePhoto", Value: m.ProfilePhoto},
		{Key: "updatedAt", Value: m.LastUpdatedAt},
		{Key: "lastUpdatedBy", Value: m.LastUpdatedBy},
	}}}
	res, err := r.users.UpdateByID(ctx, user.UserID, update)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update user %s", user.UserID))
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.D{{Key: "$set", Value: bson.D{{Key: "lastLogin", Value: at}}}})
	if err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetUserActive(ctx context.Context, userID string, isActive bool, at time.Time, updatedBy string) (*domain.User, error) {
	set := bson.D{
		{Key: "isActive", Value: isActive},
		{Key: "updatedAt", Value: at},
		{Key: "lastUpdatedBy", Value: updatedBy},
	}
	if !isActive {
		set = append(set, bson.E{Key: "refreshTokens", Value: bson.A{}})
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.User
	err := r.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: userID}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&m)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to set status of user %s", userID))
	}
	u, err := mapping.ToDomainUser(m)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
