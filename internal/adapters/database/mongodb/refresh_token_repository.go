package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/echopind/echopind_backend/internal/models"
	"github.com/echopind/echopind_backend/internal/utils/mapping"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// sessionListUpdate builds the pipeline update that keeps the live sessions accepted by keep,
// appends next and trims the list to the newest maxTokens entries in one document write.
func sessionListUpdate(keep bson.D, next models.RefreshToken, maxTokens int) mongo.Pipeline {
	kept := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$refreshTokens", bson.A{}}}}},
		{Key: "as", Value: "t"},
		{Key: "cond", Value: keep},
	}}}
	appended := bson.D{{Key: "$concatArrays", Value: bson.A{
		kept,
		bson.D{{Key: "$literal", Value: bson.A{next}}},
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "refreshTokens", Value: bson.D{{Key: "$slice", Value: bson.A{appended, -maxTokens}}}},
		}}},
	}
}

func notExpired(now time.Time) bson.D {
	return bson.D{{Key: "$gt", Value: bson.A{"$$t.expiresAt", now}}}
}

func (r *UserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken, maxTokens int, now time.Time) error {
	update := sessionListUpdate(notExpired(now), mapping.ToModelRefreshToken(token), maxTokens)
	res, err := r.users.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("failed to record session for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RotateRefreshToken only matches the document while oldHash is still a live session, so of two
// concurrent redemptions exactly one write matches.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID, oldHash string, next domain.RefreshToken, maxTokens int, now time.Time) error {
	keep := bson.D{{Key: "$and", Value: bson.A{
		notExpired(now),
		bson.D{{Key: "$ne", Value: bson.A{"$$t.tokenHash", oldHash}}},
	}}}
	filter := append(bson.D{{Key: "_id", Value: userID}}, liveSessionFilter(oldHash, now)...)
	res, err := r.users.UpdateOne(ctx, filter, sessionListUpdate(keep, mapping.ToModelRefreshToken(next), maxTokens))
	if err != nil {
		return fmt.Errorf("failed to rotate session for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "refreshTokens", Value: bson.D{{Key: "tokenHash", Value: tokenHash}}}}}}
	if _, err := r.users.UpdateByID(ctx, userID, update); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (r *UserRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "refreshTokens", Value: bson.A{}}}}}
	if _, err := r.users.UpdateByID(ctx, userID, update); err != nil {
		return fmt.Errorf("failed to clear sessions of user %s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) ListRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error) {
	var m models.User
	opts := options.FindOne().SetProjection(bson.D{{Key: "refreshTokens", Value: 1}})
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}, opts).Decode(&m); err != nil {
		return nil, translateError(err, "failed to list sessions")
	}
	return domain.ActiveRefreshTokens(mapping.ToDomainRefreshTokens(m.RefreshTokens), now), nil
}
