package ooi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOriginType(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want OriginType
	}{
		{"declaration", OriginDeclaration},
		{"observation", OriginObservation},
		{"INFERENCE", OriginInference},
	} {
		got, err := ParseOriginType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseOriginType("guess")
	assert.Error(t, err)
	assert.Equal(t, "OriginType(9)", OriginType(9).String())
}

func TestOrigin_JSON(t *testing.T) {
	data := `[
		{"origin_type": "declaration", "method": "manual", "source": "Network|internet", "result": ["Network|internet"], "task_id": null},
		{"origin_type": "observation", "method": "kat_dns_normalize", "source": "Hostname|internet|example.com",
		 "result": ["DNSZone|internet|example.com"], "task_id": "3fa85f64-5717-4562-b3fc-2c963f66afa6"}
	]`

	var origins []Origin
	require.NoError(t, json.Unmarshal([]byte(data), &origins))
	require.Len(t, origins, 2)

	assert.Equal(t, OriginDeclaration, origins[0].Type)
	assert.Empty(t, origins[0].TaskID)
	assert.Equal(t, MustParse("Network|internet"), origins[0].Source)

	assert.Equal(t, OriginObservation, origins[1].Type)
	assert.Equal(t, "3fa85f64-5717-4562-b3fc-2c963f66afa6", origins[1].TaskID)
	assert.Equal(t, []Reference{MustParse("DNSZone|internet|example.com")}, origins[1].Result)

	out, err := json.Marshal(origins[1])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"origin_type":"observation"`)
	assert.Contains(t, string(out), `"task_id":"3fa85f64-5717-4562-b3fc-2c963f66afa6"`)
}

func TestOrigin_JSON_InvalidType(t *testing.T) {
	var o Origin
	err := json.Unmarshal([]byte(`{"origin_type":"rumour","source":"Network|internet"}`), &o)
	assert.Error(t, err)
}
