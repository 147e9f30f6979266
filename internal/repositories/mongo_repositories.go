package repositories

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"cloud-kitchen-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// categoryAll is what the storefront sends for "no category filter".
const categoryAll = "All"

type menuRepository struct {
	collection *mongo.Collection
}

func NewMenuRepository(db *mongo.Database) MenuRepository {
	return &menuRepository{
		collection: db.Collection("menu_items"),
	}
}

// menuQuery turns a MenuFilter into a Mongo filter document.
func menuQuery(f MenuFilter) bson.M {
	query := bson.M{}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, categoryAll) {
		query["category"] = c
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	if f.AvailableOnly {
		query["is_available"] = true
	}
	return query
}

func (r *menuRepository) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, menuQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) Upsert(ctx context.Context, item *models.MenuItem) error {
	item.UpdatedAt = time.Now().UTC()

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": item.ID},
		item,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *menuRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}
