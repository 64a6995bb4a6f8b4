package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestString(t *testing.T) {
	m := decode(t, `{"name": "nmap", "empty": "", "null": null, "n": 3}`)

	assert.Equal(t, "nmap", String(m, "name", "x"))
	assert.Equal(t, "", String(m, "empty", "x"))
	assert.Equal(t, "x", String(m, "null", "x"))
	assert.Equal(t, "x", String(m, "n", "x"))
	assert.Equal(t, "x", String(m, "missing", "x"))
	assert.Equal(t, "x", String(nil, "name", "x"))
}

func TestInt(t *testing.T) {
	m := decode(t, `{"level": 2, "text": " 3 ", "bad": "three", "flag": true}`)

	assert.Equal(t, 2, Int(m, "level", -1))
	assert.Equal(t, 3, Int(m, "text", -1))
	assert.Equal(t, -1, Int(m, "bad", -1))
	assert.Equal(t, -1, Int(m, "flag", -1))
	assert.Equal(t, -1, Int(nil, "level", -1))
	assert.Equal(t, 7, Int(map[string]any{"v": int64(7)}, "v", -1))
}

func TestBoolAndMap(t *testing.T) {
	m := decode(t, `{"enabled": true, "meta": {"id": "x"}, "list": []}`)

	assert.True(t, Bool(m, "enabled", false))
	assert.False(t, Bool(m, "meta", false))
	assert.Equal(t, map[string]any{"id": "x"}, Map(m, "meta"))
	assert.Nil(t, Map(m, "list"))
	assert.Nil(t, Map(nil, "meta"))
}

func TestStringSlice(t *testing.T) {
	m := decode(t, `{"consumes": ["Hostname", null, 4], "one": "Network", "n": 1}`)

	assert.Equal(t, []string{"Hostname", "4"}, StringSlice(m, "consumes"))
	assert.Equal(t, []string{"Network"}, StringSlice(m, "one"))
	assert.Nil(t, StringSlice(m, "n"))
	assert.Equal(t, []string{"a"}, StringSlice(map[string]any{"v": []string{"a"}}, "v"))
}

func TestPath(t *testing.T) {
	m := decode(t, `{"boefje_meta": {"boefje": {"id": "dns-records"}, "arguments": "x"}}`)

	v, err := Path(m, "boefje_meta", "boefje", "id")
	require.NoError(t, err)
	assert.Equal(t, "dns-records", v)

	_, err = Path(m, "boefje_meta", "missing", "id")
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "missing", pe.Failed)
	assert.Equal(t, "boefje_meta.missing.id: missing is missing", err.Error())

	_, err = Path(m, "boefje_meta", "arguments", "id")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "id", pe.Failed)

	_, err = Path(nil, "a")
	assert.Error(t, err)
}
