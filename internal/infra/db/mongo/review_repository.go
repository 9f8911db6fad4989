package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "tourway/internal/domain/booking"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

func (r *ReviewRepository) ByTourAndAuthor(ctx context.Context, tourID domaintour.TourID, authorID domainuser.ID) (*domainreviews.Review, error) {
	var doc reviewDocument
	filter := bson.M{"tour_id": tourID, "author_id": authorID}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByTour(ctx context.Context, tourID domaintour.TourID, limit, offset int) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	cur, err := r.col.Find(ctx, bson.M{"tour_id": tourID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreviews.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := reviewDocument{
		ID:        string(review.ID),
		TourID:    string(review.TourID),
		AuthorID:  string(review.AuthorID),
		BookingID: string(review.BookingID),
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt.UnixMilli(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

type reviewDocument struct {
	ID        string `bson:"_id"`
	TourID    string `bson:"tour_id"`
	AuthorID  string `bson:"author_id"`
	BookingID string `bson:"booking_id"`
	Rating    int    `bson:"rating"`
	Text      string `bson:"text"`
	CreatedAt int64  `bson:"created_at"`
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		TourID:    domaintour.TourID(d.TourID),
		AuthorID:  domainuser.ID(d.AuthorID),
		BookingID: domainbooking.BookingID(d.BookingID),
		Rating:    d.Rating,
		Text:      d.Text,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
