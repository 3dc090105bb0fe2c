package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesKeepInsertionOrder(t *testing.T) {
	attrs := NewAttributes()
	attrs.Set("Zeta", "1")
	attrs.Set("Alpha", "2")
	attrs.Set("Zeta", "3")

	raw, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"3","Alpha":"2"}`, string(raw))

	var decoded Attributes
	require.NoError(t, json.Unmarshal([]byte(`{"b":"x","a":"y","c":"z"}`), &decoded))
	assert.Equal(t, []string{"b", "a", "c"}, decoded.Keys())
}

func TestAttributesDatabaseRoundTrip(t *testing.T) {
	attrs := NewAttributes()
	attrs.Set("Goalie Email", "jane@x.com")
	attrs.Set("Team", "Eagles")

	value, err := attrs.Value()
	require.NoError(t, err)

	var scanned Attributes
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, attrs.Keys(), scanned.Keys())
	team, ok := scanned.Get("Team")
	assert.True(t, ok)
	assert.Equal(t, "Eagles", team)

	require.NoError(t, scanned.Scan(nil))
	assert.Zero(t, scanned.Len())
	assert.Error(t, scanned.Scan(42))
}

func TestAttributesRejectNonObject(t *testing.T) {
	var attrs Attributes
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &attrs))
}
