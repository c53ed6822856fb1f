package attr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSerialization(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"Null", Null(), `null`},
		{"Int", Int(123), `123`},
		{"Float", Float(0.5), `0.5`},
		{"String", String("hello"), `"hello"`},
		{"Bool", Bool(true), `true`},
		{"Array", Array(Int(1), Float(2.5)), `[1,2.5]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.val)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var got Value
			require.NoError(t, json.Unmarshal(b, &got))
			assert.True(t, tt.val.Equal(got, 0), "got %s", got.Key())
		})
	}

	t.Run("IntegralFloatDecodesAsInt", func(t *testing.T) {
		var got Value
		require.NoError(t, json.Unmarshal([]byte(`2`), &got))
		assert.Equal(t, KindInt, got.Kind)
		assert.True(t, Float(2).Equal(got, 0))
	})

	t.Run("IntegralFloatKeepsKind", func(t *testing.T) {
		b, err := json.Marshal(Float(2))
		require.NoError(t, err)
		assert.Equal(t, `2.0`, string(b))

		var got Value
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, KindFloat, got.Kind)
	})
}

func TestMapJSONIsSorted(t *testing.T) {
	m := Map{"b": Int(1), "a": String("x")}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1}`, string(b))

	var back Map
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, m.Equal(back, 0))
}

func TestMapClone(t *testing.T) {
	m := Map{"list": Array(Int(1), Int(2))}
	c := m.Clone()
	c["list"].A[0] = Int(9)

	assert.Equal(t, int64(1), m["list"].A[0].I64)
	assert.Nil(t, Map(nil).Clone())
}

func TestValueEqualTolerance(t *testing.T) {
	assert.True(t, Float(1.0).Equal(Float(1.0+1e-9), 1e-6))
	assert.False(t, Float(1.0).Equal(Float(1.1), 1e-6))
	assert.True(t, Int(3).Equal(Float(3), 0))
	assert.False(t, String("3").Equal(Int(3), 0))
	assert.True(t, Null().Equal(Null(), 0))
}

func TestText(t *testing.T) {
	assert.Equal(t, "42", Int(42).Text())
	assert.Equal(t, "0.25", Float(0.25).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, "1 2", Array(Int(1), Int(2)).Text())
	assert.Equal(t, "cat", String("cat").Text())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny([]any{1, "a", true})
	require.NoError(t, err)
	assert.Equal(t, KindArray, v.Kind)
	assert.Len(t, v.A, 3)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)

	_, err = FromAny(uint64(1) << 40)
	assert.Error(t, err)

	m, err := MapFromAny(map[string]any{"score": 0.5, "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, KindFloat, m["score"].Kind)
	assert.Equal(t, "x", m["name"].StringValue())

	assert.Equal(t, []any{int64(1), "a"}, ToAny(Array(Int(1), String("a"))))
}
