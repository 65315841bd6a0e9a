package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserRepository reads the account records the identity provider syncs into "users".
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		logger:     log.Named("user_repository"),
	}
}

// GetEmailByID looks a user up by ObjectID hex or, failing that, by the raw string id.
func (r *UserRepository) GetEmailByID(ctx context.Context, userID string) (string, error) {
	var key interface{} = userID
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		key = oid
	}

	var userDoc struct {
		Email string `bson:"email"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&userDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("GetEmailByID: user not found", zap.String("user_id", userID))
			return "", domain.ErrUserNotFound
		}
		r.logger.Error("GetEmailByID: failed to find user", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("UserRepository.GetEmailByID: %w", err)
	}
	if userDoc.Email == "" {
		return "", domain.ErrUserNotFound
	}
	return userDoc.Email, nil
}
