package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeStructuredPlainJSON(t *testing.T) {
	var out sample
	require.NoError(t, DecodeStructured(`{"name":"a","count":2}`, &out))
	assert.Equal(t, sample{Name: "a", Count: 2}, out)
}

func TestDecodeStructuredStripsCodeFence(t *testing.T) {
	var out sample
	raw := "```json\n{\"name\":\"a\",\"count\":2}\n```"
	require.NoError(t, DecodeStructured(raw, &out))
	assert.Equal(t, "a", out.Name)
}

func TestDecodeStructuredNullMeansNothingExtracted(t *testing.T) {
	var out sample
	assert.ErrorIs(t, DecodeStructured("null", &out), ErrNothingExtracted)
	assert.ErrorIs(t, DecodeStructured("", &out), ErrNothingExtracted)
	assert.ErrorIs(t, DecodeStructured("  \n ", &out), ErrNothingExtracted)
}

func TestDecodeStructuredRepairsBrokenJSON(t *testing.T) {
	var out sample
	// trailing comma and single quotes, typical LLM breakage
	require.NoError(t, DecodeStructured(`{'name': 'a', 'count': 2,}`, &out))
	assert.Equal(t, "a", out.Name)
}

func TestDecodeStructuredUnrepairableIsNothingExtracted(t *testing.T) {
	var out sample
	err := DecodeStructured("sorry, I cannot help with that", &out)
	assert.ErrorIs(t, err, ErrNothingExtracted)
}

type validated struct {
	Value int `json:"value"`
}

func (v *validated) Validate() error {
	if v.Value < 0 {
		return fmt.Errorf("negative value")
	}
	return nil
}

func TestDecodeStructuredRunsValidator(t *testing.T) {
	var out validated
	require.NoError(t, DecodeStructured(`{"value": 1}`, &out))

	var bad validated
	err := DecodeStructured(`{"value": -1}`, &bad)
	assert.True(t, errors.Is(err, ErrNothingExtracted))
}
