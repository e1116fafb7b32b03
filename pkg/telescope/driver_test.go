package telescope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseDriverDefaultsToNotImplemented(t *testing.T) {
	var d BaseDriver

	_, err := d.Altitude()
	assert.True(t, IsNotImplemented(err))

	_, err = d.AtPark()
	assert.True(t, IsNotImplemented(err))

	err = d.Park()
	assert.True(t, IsNotImplemented(err))

	err = d.MoveAxis(0, 1.0)
	assert.True(t, IsNotImplemented(err))
}

func TestBaseDriverConnectDisconnectAreNoops(t *testing.T) {
	var d BaseDriver
	assert.NoError(t, d.Connect(context.Background()))
	assert.NoError(t, d.Disconnect(context.Background()))
}

func TestBaseDriverTrackingRatesListsAllFour(t *testing.T) {
	var d BaseDriver
	rates, err := d.TrackingRates()
	assert.NoError(t, err)
	assert.Equal(t, []TrackingRate{TrackingSidereal, TrackingLunar, TrackingSolar, TrackingKing}, rates)
}

func TestIsNotImplementedRejectsOtherErrors(t *testing.T) {
	assert.False(t, IsNotImplemented(assertError{}))
}

type assertError struct{}

func (assertError) Error() string { return "some other failure" }
