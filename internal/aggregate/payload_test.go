package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyPayloadEnergy(t *testing.T) {
	p := ClassifyPayload("energy", json.RawMessage(`{"energy": 770.79}`))
	ep, ok := p.(EnergyPayload)
	require.True(t, ok)
	require.NotNil(t, ep.Energy)
	require.Equal(t, 770.79, *ep.Energy)
}

func TestClassifyPayloadEnergyMissingField(t *testing.T) {
	p := ClassifyPayload("energy", json.RawMessage(`{"power": 12}`))
	ep, ok := p.(EnergyPayload)
	require.True(t, ok)
	require.Nil(t, ep.Energy)
}

func TestClassifyPayloadEnergyWrongType(t *testing.T) {
	for _, raw := range []string{
		`{"energy": "770.79"}`,
		`{"energy": true}`,
		`{"energy": null}`,
		`{"energy": [1,2]}`,
	} {
		p := ClassifyPayload("energy", json.RawMessage(raw))
		ep, ok := p.(EnergyPayload)
		require.True(t, ok, raw)
		require.Nil(t, ep.Energy, raw)
	}
}

func TestClassifyPayloadAirQuality(t *testing.T) {
	p := ClassifyPayload("air_quality", json.RawMessage(`{"co2": 864, "humidity": 72, "pm25": 14}`))
	aq, ok := p.(AirQualityPayload)
	require.True(t, ok)
	require.NotNil(t, aq.CO2)
	require.Equal(t, int64(864), *aq.CO2)
	require.NotNil(t, aq.Humidity)
	require.Equal(t, int64(72), *aq.Humidity)
	require.NotNil(t, aq.PM25)
	require.Equal(t, int64(14), *aq.PM25)
}

func TestClassifyPayloadAirQualityPartial(t *testing.T) {
	p := ClassifyPayload("air_quality", json.RawMessage(`{"co2": 512}`))
	aq, ok := p.(AirQualityPayload)
	require.True(t, ok)
	require.NotNil(t, aq.CO2)
	require.Nil(t, aq.Humidity)
	require.Nil(t, aq.PM25)
}

func TestClassifyPayloadIntCoercion(t *testing.T) {
	// Whole-valued floats coerce, fractional ones do not.
	p := ClassifyPayload("air_quality", json.RawMessage(`{"co2": 864.0, "humidity": 72.5}`))
	aq := p.(AirQualityPayload)
	require.NotNil(t, aq.CO2)
	require.Equal(t, int64(864), *aq.CO2)
	require.Nil(t, aq.Humidity)
}

func TestClassifyPayloadMotion(t *testing.T) {
	p := ClassifyPayload("motion", json.RawMessage(`{"motionDetected": true}`))
	mp, ok := p.(MotionPayload)
	require.True(t, ok)
	require.NotNil(t, mp.Detected)
	require.True(t, *mp.Detected)

	p = ClassifyPayload("motion", json.RawMessage(`{"motionDetected": "yes"}`))
	mp = p.(MotionPayload)
	require.Nil(t, mp.Detected)
}

func TestClassifyPayloadCorrupt(t *testing.T) {
	for _, raw := range []string{
		`{"energy": 770.7`, // truncated
		`not json at all`,
		`[1,2,3]`, // structured but not an object
		``,
	} {
		p := ClassifyPayload("energy", json.RawMessage(raw))
		require.IsType(t, UnknownPayload{}, p, raw)
	}
}

func TestClassifyPayloadUnknownCategory(t *testing.T) {
	p := ClassifyPayload("vibration", json.RawMessage(`{"hz": 50}`))
	require.IsType(t, UnknownPayload{}, p)
}
