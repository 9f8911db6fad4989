package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "tourway/internal/domain/booking"
	domainpricing "tourway/internal/domain/pricing"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeBookings(ctx, cur)
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts = opts.SetSkip(int64(filter.Offset))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeBookings(ctx, cur)
}

func decodeBookings(ctx context.Context, cur *mongo.Cursor) ([]*domainbooking.Booking, error) {
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID              string                 `bson:"_id"`
	Reference       string                 `bson:"reference"`
	TourID          string                 `bson:"tour_id"`
	UserID          string                 `bson:"user_id"`
	Travelers       []travelerDocument     `bson:"travelers"`
	TravelStart     int64                  `bson:"travel_start"`
	TravelEnd       int64                  `bson:"travel_end"`
	Price           domainpricing.Snapshot `bson:"price"`
	Payment         paymentDocument        `bson:"payment"`
	Status          string                 `bson:"status"`
	SpecialRequests string                 `bson:"special_requests"`
	Cancellation    *cancellationDocument  `bson:"cancellation,omitempty"`
	CreatedAt       int64                  `bson:"created_at"`
	UpdatedAt       int64                  `bson:"updated_at"`
	Version         int64                  `bson:"version"`
}

type travelerDocument struct {
	Name   string `bson:"name"`
	Email  string `bson:"email"`
	Phone  string `bson:"phone"`
	Age    int    `bson:"age"`
	Gender string `bson:"gender"`
}

type paymentDocument struct {
	Method          string      `bson:"method"`
	Status          string      `bson:"status"`
	TransactionID   string      `bson:"transaction_id"`
	PaymentIntentID string      `bson:"payment_intent_id"`
	PaidAt          int64       `bson:"paid_at"`
	RefundedAt      int64       `bson:"refunded_at"`
	RefundAmount    money.Money `bson:"refund_amount"`
	RefundReason    string      `bson:"refund_reason"`
}

type cancellationDocument struct {
	Reason         string      `bson:"reason"`
	Date           int64       `bson:"date"`
	RefundAmount   money.Money `bson:"refund_amount"`
	RefundPercent  int64       `bson:"refund_percent"`
	RefundEligible bool        `bson:"refund_eligible"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	travelers := make([]travelerDocument, 0, len(b.Travelers))
	for _, t := range b.Travelers {
		travelers = append(travelers, travelerDocument{
			Name:   t.Name,
			Email:  t.Email,
			Phone:  t.Phone,
			Age:    t.Age,
			Gender: string(t.Gender),
		})
	}
	doc := bookingDocument{
		ID:          string(b.ID),
		Reference:   b.Reference,
		TourID:      string(b.TourID),
		UserID:      string(b.UserID),
		Travelers:   travelers,
		TravelStart: b.Dates.Start.UnixMilli(),
		TravelEnd:   b.Dates.End.UnixMilli(),
		Price:       b.Price,
		Payment: paymentDocument{
			Method:          b.Payment.Method,
			Status:          string(b.Payment.Status),
			TransactionID:   b.Payment.TransactionID,
			PaymentIntentID: b.Payment.PaymentIntentID,
			PaidAt:          timeToMillis(b.Payment.PaidAt),
			RefundedAt:      timeToMillis(b.Payment.RefundedAt),
			RefundAmount:    b.Payment.RefundAmount,
			RefundReason:    b.Payment.RefundReason,
		},
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		Version:         b.Version,
	}
	if b.Cancellation != nil {
		doc.Cancellation = &cancellationDocument{
			Reason:         b.Cancellation.Reason,
			Date:           b.Cancellation.Date.UnixMilli(),
			RefundAmount:   b.Cancellation.RefundAmount,
			RefundPercent:  b.Cancellation.RefundPercent,
			RefundEligible: b.Cancellation.RefundEligible,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	travelers := make([]domainbooking.Traveler, 0, len(d.Travelers))
	for _, t := range d.Travelers {
		travelers = append(travelers, domainbooking.Traveler{
			Name:   t.Name,
			Email:  t.Email,
			Phone:  t.Phone,
			Age:    t.Age,
			Gender: domainbooking.Gender(t.Gender),
		})
	}
	b := &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		Reference: d.Reference,
		TourID:    domaintour.TourID(d.TourID),
		UserID:    domainuser.ID(d.UserID),
		Travelers: travelers,
		Dates: domainbooking.TravelDates{
			Start: timestampToTime(d.TravelStart),
			End:   timestampToTime(d.TravelEnd),
		},
		Price: d.Price,
		Payment: domainbooking.PaymentRecord{
			Method:          d.Payment.Method,
			Status:          domainbooking.PaymentStatus(d.Payment.Status),
			TransactionID:   d.Payment.TransactionID,
			PaymentIntentID: d.Payment.PaymentIntentID,
			PaidAt:          millisToTime(d.Payment.PaidAt),
			RefundedAt:      millisToTime(d.Payment.RefundedAt),
			RefundAmount:    d.Payment.RefundAmount,
			RefundReason:    d.Payment.RefundReason,
		},
		Status:          domainbooking.Status(d.Status),
		SpecialRequests: d.SpecialRequests,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
	if d.Cancellation != nil {
		b.Cancellation = &domainbooking.Cancellation{
			Reason:         d.Cancellation.Reason,
			Date:           timestampToTime(d.Cancellation.Date),
			RefundAmount:   d.Cancellation.RefundAmount,
			RefundPercent:  d.Cancellation.RefundPercent,
			RefundEligible: d.Cancellation.RefundEligible,
		}
	}
	return b
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// millisToTime maps the zero value back to a zero time so optional
// timestamps round-trip.
func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func timeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
