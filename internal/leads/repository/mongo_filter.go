package repository

import (
	"regexp"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// buildLeadFilter renders pred as a MongoDB filter document. The owner scope
// is always the first element.
func buildLeadFilter(pred filter.Predicate) bson.D {
	doc := bson.D{{Key: domain.FieldOwnerID, Value: pred.OwnerID}}

	for _, cond := range pred.Conditions {
		if _, known := domain.Lookup(cond.FieldName()); !known {
			continue
		}
		switch c := cond.(type) {
		case filter.StringEquals:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		case filter.StringContains:
			doc = append(doc, bson.E{Key: c.Field, Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(c.Value)},
				{Key: "$options", Value: "i"},
			}})
		case filter.EnumEquals:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		case filter.EnumIn:
			doc = append(doc, bson.E{Key: c.Field, Value: bson.D{{Key: "$in", Value: c.Values}}})
		case filter.NumberEquals:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		case filter.NumberRange:
			doc = append(doc, bson.E{Key: c.Field, Value: rangeDoc(c.Gt, c.Gte, c.Lt, c.Lte)})
		case filter.TimeRange:
			doc = append(doc, bson.E{Key: c.Field, Value: rangeDoc(c.Gt, c.Gte, c.Lt, c.Lte)})
		case filter.BoolEquals:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		}
	}
	return doc
}

func rangeDoc[T any](gt, gte, lt, lte *T) bson.D {
	ops := bson.D{}
	for _, bound := range []struct {
		op    string
		value *T
	}{{"$gt", gt}, {"$gte", gte}, {"$lt", lt}, {"$lte", lte}} {
		if bound.value != nil {
			ops = append(ops, bson.E{Key: bound.op, Value: *bound.value})
		}
	}
	return ops
}
