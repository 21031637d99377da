package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/security"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const prototypesCollection = "prototypes"

// prototypeDoc is the stored shape. The live-link password is encrypted at
// rest; the domain struct only ever carries the plaintext.
type prototypeDoc struct {
	domain.Prototype      `bson:",inline"`
	EncryptedLivePassword string `bson:"livePrototypePublicPassword,omitempty"`
}

// PrototypeRepository handles prototype data access
type PrototypeRepository struct {
	db        *DB
	encryptor *security.Encryptor
}

// NewPrototypeRepository creates a new prototype repository
func NewPrototypeRepository(db *DB, encryptor *security.Encryptor) *PrototypeRepository {
	return &PrototypeRepository{db: db, encryptor: encryptor}
}

func (r *PrototypeRepository) collection() *mongo.Collection {
	return r.db.Collection(prototypesCollection)
}

func (r *PrototypeRepository) toDoc(prototype *domain.Prototype) (*prototypeDoc, error) {
	doc := &prototypeDoc{Prototype: *prototype}
	if prototype.LivePassword != "" {
		encrypted, err := r.encryptor.EncryptString(prototype.LivePassword)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt live password: %w", err)
		}
		doc.EncryptedLivePassword = encrypted
	}
	return doc, nil
}

func (r *PrototypeRepository) fromDoc(doc *prototypeDoc) (*domain.Prototype, error) {
	prototype := doc.Prototype
	if doc.EncryptedLivePassword != "" {
		plaintext, err := r.encryptor.DecryptString(doc.EncryptedLivePassword)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt live password: %w", err)
		}
		prototype.LivePassword = plaintext
	}
	return &prototype, nil
}

// Create inserts a new prototype
func (r *PrototypeRepository) Create(ctx context.Context, prototype *domain.Prototype) error {
	doc, err := r.toDoc(prototype)
	if err != nil {
		return err
	}
	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create prototype: %w", err)
	}
	return nil
}

// GetByID retrieves a prototype by ID
func (r *PrototypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Prototype, error) {
	var doc prototypeDoc
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prototype: %w", err)
	}
	return r.fromDoc(&doc)
}

func listQuery(workspaceIDs []primitive.ObjectID, filter domain.PrototypeFilter) bson.M {
	query := bson.M{"workspaceId": bson.M{"$in": workspaceIDs}}
	if filter.WorkspaceID != nil {
		query["workspaceId"] = *filter.WorkspaceID
	}
	if filter.CreatorUserID != nil {
		query["creatorUserId"] = *filter.CreatorUserID
	}
	return query
}

// ListByWorkspaces retrieves prototypes in the given workspaces, newest
// first, narrowed by the filter
func (r *PrototypeRepository) ListByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter domain.PrototypeFilter, limit, offset int) ([]domain.Prototype, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection().Find(ctx, listQuery(workspaceIDs, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list prototypes: %w", err)
	}
	defer cursor.Close(ctx)

	return r.decodeAll(ctx, cursor)
}

// CountByWorkspaces counts prototypes matching a listing query, for
// pagination
func (r *PrototypeRepository) CountByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter domain.PrototypeFilter) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, listQuery(workspaceIDs, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count prototypes: %w", err)
	}
	return count, nil
}

// ListSharedWith retrieves prototypes individually shared with a user,
// newest first
func (r *PrototypeRepository) ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]domain.Prototype, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection().Find(ctx, bson.M{"sharedWithUserIds": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared prototypes: %w", err)
	}
	defer cursor.Close(ctx)

	return r.decodeAll(ctx, cursor)
}

func (r *PrototypeRepository) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.Prototype, error) {
	var docs []prototypeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode prototypes: %w", err)
	}

	prototypes := make([]domain.Prototype, 0, len(docs))
	for i := range docs {
		prototype, err := r.fromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		prototypes = append(prototypes, *prototype)
	}
	return prototypes, nil
}

// Update replaces a prototype document
func (r *PrototypeRepository) Update(ctx context.Context, prototype *domain.Prototype) error {
	prototype.UpdatedAt = time.Now()

	doc, err := r.toDoc(prototype)
	if err != nil {
		return err
	}

	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": prototype.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update prototype: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a prototype
func (r *PrototypeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete prototype: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
