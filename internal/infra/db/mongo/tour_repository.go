package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
)

type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{col: db.Collection("agg_tour")}
}

func (r *TourRepository) ByID(ctx context.Context, id domaintour.TourID) (*domaintour.Tour, error) {
	var doc tourDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintour.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes the descriptive fields. The capacity counter pair belongs to
// ReserveSlot/ReleaseSlot and is only seeded on first insert, so a Save from
// a stale read can never undo a concurrent reservation.
func (r *TourRepository) Save(ctx context.Context, t *domaintour.Tour) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": string(t.ID)}, tourSaveUpdate(t), opts)
	return err
}

func tourSaveUpdate(t *domaintour.Tour) bson.M {
	return bson.M{
		"$set": bson.M{
			"title":               t.Title,
			"description":         t.Description,
			"destination":         t.Destination,
			"country":             t.Country,
			"duration_days":       t.DurationDays,
			"price":               t.Price,
			"discount_percent":    t.DiscountPercent,
			"difficulty":          string(t.Difficulty),
			"max_group_size":      t.MaxGroupSize,
			"cancellation_policy": t.CancellationPolicy,
			"tags":                t.Tags,
			"rating_average":      t.RatingAverage,
			"rating_count":        t.RatingCount,
			"is_active":           t.IsActive,
			"is_featured":         t.IsFeatured,
			"created_at":          t.CreatedAt.UnixMilli(),
			"updated_at":          t.UpdatedAt.UnixMilli(),
		},
		"$setOnInsert": bson.M{
			"total_booked":    t.TotalBooked,
			"available_slots": t.AvailableSlots,
		},
	}
}

func (r *TourRepository) Search(ctx context.Context, params domaintour.SearchParams) ([]*domaintour.Tour, error) {
	query := bson.M{}
	if params.OnlyActive {
		query["is_active"] = true
	}
	if params.FeaturedOnly {
		query["is_featured"] = true
	}
	if params.Destination != "" {
		query["destination"] = params.Destination
	}
	if params.Country != "" {
		query["country"] = params.Country
	}
	if params.Difficulty != "" {
		query["difficulty"] = params.Difficulty
	}
	price := bson.M{}
	if params.PriceMin > 0 {
		price["$gte"] = params.PriceMin
	}
	if params.PriceMax > 0 {
		price["$lte"] = params.PriceMax
	}
	if len(price) > 0 {
		query["price.amount"] = price
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if params.Limit > 0 {
		opts = opts.SetLimit(int64(params.Limit))
	}
	if params.Offset > 0 {
		opts = opts.SetSkip(int64(params.Offset))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaintour.Tour
	for cur.Next(ctx) {
		var doc tourDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// ReserveSlot takes one slot in a single conditional update so concurrent
// bookings can never oversell the tour.
func (r *TourRepository) ReserveSlot(ctx context.Context, id domaintour.TourID) error {
	filter := bson.M{"_id": id, "is_active": true, "available_slots": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"available_slots": -1, "total_booked": 1}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if exists, err := r.exists(ctx, id); err != nil {
			return err
		} else if !exists {
			return domaintour.ErrNotFound
		}
		return domaintour.ErrSoldOut
	}
	return nil
}

// ReleaseSlot returns a previously reserved slot.
func (r *TourRepository) ReleaseSlot(ctx context.Context, id domaintour.TourID) error {
	filter := bson.M{"_id": id, "total_booked": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"available_slots": 1, "total_booked": -1}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaintour.ErrNotFound
	}
	return nil
}

func (r *TourRepository) exists(ctx context.Context, id domaintour.TourID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type tourDocument struct {
	ID                 string      `bson:"_id"`
	Title              string      `bson:"title"`
	Description        string      `bson:"description"`
	Destination        string      `bson:"destination"`
	Country            string      `bson:"country"`
	DurationDays       int         `bson:"duration_days"`
	Price              money.Money `bson:"price"`
	DiscountPercent    int64       `bson:"discount_percent"`
	Difficulty         string      `bson:"difficulty"`
	MaxGroupSize       int         `bson:"max_group_size"`
	CancellationPolicy string      `bson:"cancellation_policy"`
	Tags               []string    `bson:"tags"`
	TotalBooked        int         `bson:"total_booked"`
	AvailableSlots     int         `bson:"available_slots"`
	RatingAverage      float64     `bson:"rating_average"`
	RatingCount        int         `bson:"rating_count"`
	IsActive           bool        `bson:"is_active"`
	IsFeatured         bool        `bson:"is_featured"`
	CreatedAt          int64       `bson:"created_at"`
	UpdatedAt          int64       `bson:"updated_at"`
}

func (d tourDocument) toAggregate() *domaintour.Tour {
	return &domaintour.Tour{
		ID:                 domaintour.TourID(d.ID),
		Title:              d.Title,
		Description:        d.Description,
		Destination:        d.Destination,
		Country:            d.Country,
		DurationDays:       d.DurationDays,
		Price:              d.Price,
		DiscountPercent:    d.DiscountPercent,
		Difficulty:         domaintour.Difficulty(d.Difficulty),
		MaxGroupSize:       d.MaxGroupSize,
		CancellationPolicy: d.CancellationPolicy,
		Tags:               d.Tags,
		TotalBooked:        d.TotalBooked,
		AvailableSlots:     d.AvailableSlots,
		RatingAverage:      d.RatingAverage,
		RatingCount:        d.RatingCount,
		IsActive:           d.IsActive,
		IsFeatured:         d.IsFeatured,
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
	}
}
