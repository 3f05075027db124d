package repository

import (
	"context"
	"errors"
	"go-property-api/logger"
	"go-property-api/model"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const propertiesCollection = "properties"

// IPropertyRepository defines the contract for property persistence.
type IPropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Property, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.PropertyPatch) (*model.Property, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	PullImage(ctx context.Context, id primitive.ObjectID, imageURL string) (*model.Property, error)
	List(ctx context.Context, query model.ListQuery) ([]model.Property, int64, error)
}

// PropertyRepository implements IPropertyRepository on a MongoDB collection.
type PropertyRepository struct {
	coll *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{coll: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) Create(ctx context.Context, property *model.Property) error {
	log := logger.Log.WithFields(logrus.Fields{
		"owner": property.Owner.Hex(),
		"title": property.Title,
	})
	log.Info("Inserting a new property")

	now := time.Now().UTC()
	property.ID = primitive.NewObjectID()
	property.CreatedAt = now
	property.UpdatedAt = now
	if property.Tags == nil {
		property.Tags = []string{}
	}
	if property.Images == nil {
		property.Images = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, property); err != nil {
		log.WithError(err).Error("Failed to insert property")
		return err
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Property, error) {
	var property model.Property
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("property_id", id.Hex()).Error("Failed to query property")
		return nil, err
	}
	return &property, nil
}

// Update applies the non-nil fields of patch and appends its new images, returning the stored result.
func (r *PropertyRepository) Update(ctx context.Context, id primitive.ObjectID, patch model.PropertyPatch) (*model.Property, error) {
	update := bson.M{"$set": patchFields(patch)}
	if len(patch.NewImages) > 0 {
		update["$push"] = bson.M{"images": bson.M{"$each": patch.NewImages}}
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func patchFields(p model.PropertyPatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.PropertyType != nil {
		set["propertyType"] = *p.PropertyType
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.Tags != nil {
		set["tags"] = p.Tags
	}
	if p.HasParking != nil {
		set["hasParking"] = *p.HasParking
	}
	if p.IsAccessible != nil {
		set["isAccessible"] = *p.IsAccessible
	}
	if p.IsAvailable != nil {
		set["isAvailable"] = *p.IsAvailable
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	if p.LeaseTerm != nil {
		set["leaseTerm"] = *p.LeaseTerm
	}
	return set
}

func (r *PropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("property_id", id.Hex()).Error("Failed to delete property")
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullImage removes imageURL from the property's images. ErrNotFound when the URL is not listed.
func (r *PropertyRepository) PullImage(ctx context.Context, id primitive.ObjectID, imageURL string) (*model.Property, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "images": imageURL},
		bson.M{
			"$pull": bson.M{"images": imageURL},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

func (r *PropertyRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*model.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var property model.Property
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to update property")
		return nil, err
	}
	return &property, nil
}

// List returns one page of properties matching query and the total number of matches.
func (r *PropertyRepository) List(ctx context.Context, query model.ListQuery) ([]model.Property, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"filters": query.Filters,
		"sort_by": query.SortBy,
		"page":    query.Page,
		"limit":   query.Limit,
	})
	log.Debug("Listing properties")

	filter := bson.M{}
	for k, v := range query.Filters {
		filter[k] = v
	}

	dir := 1
	if query.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: query.SortBy, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(query.Skip()).
		SetLimit(query.Limit)

	properties := []model.Property{}
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cursor, err := r.coll.Find(gctx, filter, opts)
		if err != nil {
			return err
		}
		return cursor.All(gctx, &properties)
	})
	g.Go(func() error {
		var err error
		total, err = r.coll.CountDocuments(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to list properties")
		return nil, 0, err
	}
	return properties, total, nil
}
