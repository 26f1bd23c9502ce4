package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeKind_EveryKindIsNamed(t *testing.T) {
	for _, k := range TypeKinds() {
		assert.NotContains(t, k.String(), "TypeKind(", "kind %d has no name", int(k))
		assert.NotPanics(t, func() { _ = DataType{Kind: k}.Accepts(KindNull) })
	}
	assert.Equal(t, "TypeKind(99)", TypeKind(99).String())
}

func TestDataType_String(t *testing.T) {
	assert.Equal(t, "Array(Integer)", ArrayOf(IntegerType).String())
	assert.Equal(t, "Range(DateTime)", RangeOf(DateTimeType).String())
	assert.Equal(t, "Optional(Text)", OptionalOf(TextType).String())
	assert.Equal(t, "Varargs(Any)", VarargsOf(AnyType).String())
	assert.Equal(t, "Variant(Integer | Float)", VariantOf(IntegerType, FloatType).String())
}

func TestDataType_Accepts(t *testing.T) {
	numeric := VariantOf(IntegerType, FloatType)
	assert.True(t, numeric.Accepts(KindInteger))
	assert.True(t, numeric.Accepts(KindFloat))
	assert.False(t, numeric.Accepts(KindText))

	assert.True(t, OptionalOf(TextType).Accepts(KindNull))
	assert.True(t, VarargsOf(TextType).Accepts(KindText))
	assert.True(t, AnyType.Accepts(KindRange))
	assert.False(t, UndefinedType.Accepts(KindText))
	assert.True(t, NullType.Accepts(KindNull))
	assert.False(t, TextType.Accepts(KindNull))
}

func TestDataType_Equal(t *testing.T) {
	assert.True(t, ArrayOf(TextType).Equal(ArrayOf(TextType)))
	assert.False(t, ArrayOf(TextType).Equal(ArrayOf(IntegerType)))
	assert.False(t, ArrayOf(TextType).Equal(TextType))
	assert.True(t, VariantOf(IntegerType).Equal(VariantOf(IntegerType)))
}
