package discovery

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntaxExtractor_FindsAnnotatedMethods(t *testing.T) {
	src := `package demo

import org.junit.jupiter.api.Test

class CalculatorTest {
    @Test
    fun addsNumbers() {
    }

    fun helper() {
    }

    class InnerTest {
        @Test
        fun inner() {
        }
    }
}

class Calculator {
}
`
	seq, err := NewSyntaxExtractor("Test").Extract(context.Background(), []byte(src))
	require.NoError(t, err)
	decls := slices.Collect(seq)

	require.Len(t, decls, 2)
	assert.Equal(t, "CalculatorTest", decls[0].ClassName)
	assert.Equal(t, []string{"addsNumbers"}, decls[0].MethodNames())
	assert.Equal(t, 5, decls[0].Range.StartLine)
	assert.Equal(t, "InnerTest", decls[1].ClassName)
	assert.Equal(t, []string{"inner"}, decls[1].MethodNames())
}
