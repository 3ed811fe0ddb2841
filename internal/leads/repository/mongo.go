package repository

import (
	"context"
	"errors"
	"time"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LeadsCollection is the MongoDB collection holding leads.
const LeadsCollection = "leads"

type leadDocument struct {
	ID             bson.ObjectID `bson:"_id"`
	OwnerID        string        `bson:"owner_id"`
	FirstName      string        `bson:"first_name"`
	LastName       string        `bson:"last_name"`
	Email          string        `bson:"email"`
	Phone          string        `bson:"phone"`
	Company        string        `bson:"company"`
	City           string        `bson:"city"`
	State          string        `bson:"state"`
	Source         string        `bson:"source"`
	Status         string        `bson:"status"`
	Score          int           `bson:"score"`
	LeadValue      float64       `bson:"lead_value"`
	LastActivityAt *time.Time    `bson:"last_activity_at"`
	IsQualified    bool          `bson:"is_qualified"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

func (d leadDocument) toDomain() domain.Lead {
	lead := domain.Lead{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		Company:     d.Company,
		City:        d.City,
		State:       d.State,
		Source:      d.Source,
		Status:      d.Status,
		Score:       d.Score,
		LeadValue:   d.LeadValue,
		IsQualified: d.IsQualified,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.LastActivityAt != nil {
		utc := d.LastActivityAt.UTC()
		lead.LastActivityAt = &utc
	}
	return lead
}

// MongoStore persists leads in MongoDB.
type MongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore creates a lead store over the given collection.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection, now: time.Now}
}

// EnsureIndexes creates the per-owner email uniqueness and listing indexes.
func (r *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("owner_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at"),
		},
	})
	return err
}

// ValidID reports whether id is a 24 character hex ObjectID.
func (r *MongoStore) ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

func (r *MongoStore) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := leadDocument{
		ID:             bson.NewObjectID(),
		OwnerID:        lead.OwnerID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		City:           lead.City,
		State:          lead.State,
		Source:         lead.Source,
		Status:         lead.Status,
		Score:          lead.Score,
		LeadValue:      lead.LeadValue,
		LastActivityAt: truncateMillis(lead.LastActivityAt),
		IsQualified:    lead.IsQualified,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return domain.Lead{}, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoStore) GetByID(ctx context.Context, id, ownerID string) (domain.Lead, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Lead{}, ErrNotFound
	}

	var doc leadDocument
	err = r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: ownerID}}).Decode(&doc)
	if err != nil {
		return domain.Lead{}, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoStore) Update(ctx context.Context, id, ownerID string, in domain.LeadInput) (domain.Lead, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Lead{}, ErrNotFound
	}

	set := buildLeadSet(in)
	if len(set) == 0 {
		return r.GetByID(ctx, id, ownerID)
	}
	set = append(set, bson.E{Key: "updated_at", Value: r.now().UTC().Truncate(time.Millisecond)})

	var doc leadDocument
	err = r.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: ownerID}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return domain.Lead{}, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoStore) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: ownerID}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoStore) Count(ctx context.Context, pred filter.Predicate) (int64, error) {
	return r.collection.CountDocuments(ctx, buildLeadFilter(pred))
}

func (r *MongoStore) Find(ctx context.Context, q ListQuery) ([]domain.Lead, error) {
	direction := 1
	if q.Sort.Desc {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortColumn(q.Sort.Field), Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, buildLeadFilter(q.Predicate), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]domain.Lead, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, nil
}

func buildLeadSet(in domain.LeadInput) bson.D {
	set := bson.D{}
	addString := func(key string, value *string) {
		if value != nil {
			set = append(set, bson.E{Key: key, Value: *value})
		}
	}

	addString(domain.FieldFirstName, in.FirstName)
	addString(domain.FieldLastName, in.LastName)
	addString(domain.FieldEmail, in.Email)
	addString(domain.FieldPhone, in.Phone)
	addString(domain.FieldCompany, in.Company)
	addString(domain.FieldCity, in.City)
	addString(domain.FieldState, in.State)
	addString(domain.FieldSource, in.Source)
	addString(domain.FieldStatus, in.Status)
	if in.Score != nil {
		set = append(set, bson.E{Key: domain.FieldScore, Value: *in.Score})
	}
	if in.LeadValue != nil {
		set = append(set, bson.E{Key: domain.FieldLeadValue, Value: *in.LeadValue})
	}
	if in.LastActivityAt.Set {
		set = append(set, bson.E{Key: domain.FieldLastActivityAt, Value: truncateMillis(in.LastActivityAt.Value)})
	}
	if in.IsQualified != nil {
		set = append(set, bson.E{Key: domain.FieldIsQualified, Value: *in.IsQualified})
	}
	return set
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func truncateMillis(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	truncated := t.UTC().Truncate(time.Millisecond)
	return &truncated
}
