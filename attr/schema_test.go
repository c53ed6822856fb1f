package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaValidate(t *testing.T) {
	s := Schema{
		"occluded": FieldTypeBool,
		"score":    FieldTypeFloat,
		"track_id": FieldTypeInt,
		"coords":   FieldTypeArray,
	}

	assert.NoError(t, s.Validate(Map{"occluded": Bool(false), "score": Int(1), "other": String("x")}))
	assert.NoError(t, s.Validate(Map{"track_id": Null()}))
	assert.NoError(t, s.Validate(Map{"coords": Array(Int(1), Float(2))}))

	assert.Error(t, s.Validate(Map{"occluded": String("yes")}))
	assert.Error(t, s.Validate(Map{"track_id": Float(1.5)}))
	assert.Error(t, s.Validate(Map{"coords": Array(String("x"))}))

	var nilSchema Schema
	assert.NoError(t, nilSchema.Validate(Map{"anything": Int(1)}))
}
