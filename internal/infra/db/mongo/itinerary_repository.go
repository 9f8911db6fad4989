package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitinerary "tourway/internal/domain/itinerary"
	domainuser "tourway/internal/domain/user"
)

type ItineraryRepository struct {
	col *mongo.Collection
}

func NewItineraryRepository(db *mongo.Database) *ItineraryRepository {
	return &ItineraryRepository{col: db.Collection("agg_itinerary")}
}

func (r *ItineraryRepository) ByID(ctx context.Context, id domainitinerary.ItineraryID) (*domainitinerary.Itinerary, error) {
	var doc itineraryDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainitinerary.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ItineraryRepository) Save(ctx context.Context, it *domainitinerary.Itinerary) error {
	opts := options.Replace().SetUpsert(true)
	doc := newItineraryDocument(it)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ItineraryRepository) ListByOwner(ctx context.Context, filter domainitinerary.ListFilter) ([]*domainitinerary.Itinerary, error) {
	query := bson.M{"owner_id": filter.OwnerID, "is_active": true}
	if filter.Status != "" {
		query["status"] = filter.Status
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
	defer cur.Close(ctx)
	var out []*domainitinerary.Itinerary
	for cur.Next(ctx) {
		var doc itineraryDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type itineraryDocument struct {
	ID           string                         `bson:"_id"`
	OwnerID      string                         `bson:"owner_id"`
	Title        string                         `bson:"title"`
	Description  string                         `bson:"description"`
	Destination  string                         `bson:"destination"`
	Country      string                         `bson:"country"`
	DurationDays int                            `bson:"duration_days"`
	Start        int64                          `bson:"start_date"`
	End          int64                          `bson:"end_date"`
	Travelers    domainitinerary.TravelerCounts `bson:"travelers"`
	TravelStyle  []string                       `bson:"travel_style"`
	Interests    []string                       `bson:"interests"`
	Days         []itineraryDayDocument         `bson:"days"`
	Tags         []string                       `bson:"tags"`
	IsPublic     bool                           `bson:"is_public"`
	Status       string                         `bson:"status"`
	IsActive     bool                           `bson:"is_active"`
	CreatedAt    int64                          `bson:"created_at"`
	UpdatedAt    int64                          `bson:"updated_at"`
}

type itineraryDayDocument struct {
	Number      int                        `bson:"number"`
	Date        int64                      `bson:"date"`
	Title       string                     `bson:"title"`
	Description string                     `bson:"description"`
	Activities  []domainitinerary.Activity `bson:"activities"`
	Notes       string                     `bson:"notes"`
}

func newItineraryDocument(it *domainitinerary.Itinerary) itineraryDocument {
	days := make([]itineraryDayDocument, len(it.Days))
	for i, d := range it.Days {
		days[i] = itineraryDayDocument{
			Number:      d.Number,
			Date:        timeToMillis(d.Date),
			Title:       d.Title,
			Description: d.Description,
			Activities:  d.Activities,
			Notes:       d.Notes,
		}
	}
	return itineraryDocument{
		ID:           string(it.ID),
		OwnerID:      string(it.OwnerID),
		Title:        it.Title,
		Description:  it.Description,
		Destination:  it.Destination,
		Country:      it.Country,
		DurationDays: it.DurationDays,
		Start:        timeToMillis(it.Start),
		End:          timeToMillis(it.End),
		Travelers:    it.Travelers,
		TravelStyle:  it.TravelStyle,
		Interests:    it.Interests,
		Days:         days,
		Tags:         it.Tags,
		IsPublic:     it.IsPublic,
		Status:       string(it.Status),
		IsActive:     it.IsActive,
		CreatedAt:    it.CreatedAt.UnixMilli(),
		UpdatedAt:    it.UpdatedAt.UnixMilli(),
	}
}

func (d itineraryDocument) toAggregate() *domainitinerary.Itinerary {
	days := make([]domainitinerary.Day, len(d.Days))
	for i, dd := range d.Days {
		days[i] = domainitinerary.Day{
			Number:      dd.Number,
			Date:        millisToTime(dd.Date),
			Title:       dd.Title,
			Description: dd.Description,
			Activities:  dd.Activities,
			Notes:       dd.Notes,
		}
	}
	return &domainitinerary.Itinerary{
		ID:           domainitinerary.ItineraryID(d.ID),
		OwnerID:      domainuser.ID(d.OwnerID),
		Title:        d.Title,
		Description:  d.Description,
		Destination:  d.Destination,
		Country:      d.Country,
		DurationDays: d.DurationDays,
		Start:        millisToTime(d.Start),
		End:          millisToTime(d.End),
		Travelers:    d.Travelers,
		TravelStyle:  d.TravelStyle,
		Interests:    d.Interests,
		Days:         days,
		Tags:         d.Tags,
		IsPublic:     d.IsPublic,
		Status:       domainitinerary.Status(d.Status),
		IsActive:     d.IsActive,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

var _ domainitinerary.Repository = (*ItineraryRepository)(nil)
