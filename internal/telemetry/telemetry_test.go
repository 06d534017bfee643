package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestInstruments(t *testing.T) {
	inst, err := NewFromMeter(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, inst)

	assert.NotPanics(t, func() {
		inst.RecordRun(context.Background(), 3, nil)
		inst.RecordRun(context.Background(), 0, errors.New("boom"))
		inst.RecordStage(context.Background(), "vectorized", time.Now())
	})
}

func TestNilInstruments(t *testing.T) {
	var inst *Instruments
	assert.NotPanics(t, func() {
		inst.RecordRun(context.Background(), 1, nil)
		inst.RecordStage(context.Background(), "clustered", time.Now())
	})
}

func TestGlobalProvider(t *testing.T) {
	inst, err := New()
	require.NoError(t, err)
	assert.NotNil(t, inst.Runs)
}
