package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func TestDecimalCodecStoresDecimal128(t *testing.T) {
	reg := NewRegistry()
	extra := ExtraItem{ID: "extra-1", Name: "Ovo Frito", Price: decimal.RequireFromString("2.00"), Active: true}

	data, err := bson.MarshalWithRegistry(reg, extra)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	raw := bson.Raw(data)
	if got := raw.Lookup("price").Type; got != bsontype.Decimal128 {
		t.Fatalf("expected price stored as decimal128, got %s", got)
	}

	var decoded ExtraItem
	if err := bson.UnmarshalWithRegistry(reg, data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Price.Equal(extra.Price) {
		t.Fatalf("expected price %s, got %s", extra.Price, decoded.Price)
	}
}

func TestDecimalCodecAcceptsLegacyNumbers(t *testing.T) {
	reg := NewRegistry()
	cases := map[string]bson.M{
		"double": {"id": "zone-2", "fee": 2.0},
		"int32":  {"id": "zone-2", "fee": int32(2)},
		"string": {"id": "zone-2", "fee": "2.00"},
	}

	for name, doc := range cases {
		data, err := bson.Marshal(doc)
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", name, err)
		}
		var zone DeliveryZone
		if err := bson.UnmarshalWithRegistry(reg, data, &zone); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", name, err)
		}
		if !zone.Fee.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("%s: expected fee 2, got %s", name, zone.Fee)
		}
	}
}
