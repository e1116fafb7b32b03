package ascomerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactoryCodesAndMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		code    int
		message string
	}{
		{"not implemented", NotImplemented(), KindNotImplemented, CodeNotImplemented, "Not implemented"},
		{"invalid value", InvalidValue(), KindInvalidValue, CodeInvalidValue, "Invalid value"},
		{"value not set", ValueNotSet(), KindValueNotSet, CodeValueNotSet, "Value not set"},
		{"not connected", NotConnected(), KindNotConnected, CodeNotConnected, "Not connected"},
		{"parked", Parked(), KindParked, CodeParked, "Invalid operation while parked"},
		{"slaved", Slaved(), KindSlaved, CodeSlaved, "Invalid operation while slaved"},
		{"invalid operation", InvalidOperation(), KindInvalidOperation, CodeInvalidOperation, "Invalid operation"},
		{"action not implemented", ActionNotImplemented(), KindActionNotImplemented, CodeActionNotImplemented, "Action not implemented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.False(t, tt.err.IsHTTP())
		})
	}
}

func TestCustom(t *testing.T) {
	err := Custom("driver said no")
	assert.Equal(t, KindDriverCustom, err.Kind)
	assert.Equal(t, CodeDriverCustomBase, err.Code)
	assert.Equal(t, "driver said no", err.Message)
}

func TestCustomf(t *testing.T) {
	err := Customf("axis %d out of range", 1)
	assert.Equal(t, "axis 1 out of range", err.Message)
	assert.Equal(t, CodeDriverCustomBase, err.Code)
}

func TestHTTP(t *testing.T) {
	err := HTTP(404, "Device not found")
	assert.Equal(t, KindHTTP, err.Kind)
	assert.True(t, err.IsHTTP())
	assert.Equal(t, CodeHTTPBase+404, err.Code)
	assert.Equal(t, 404, err.HTTPStatus())
	assert.Equal(t, "Device not found", err.Error())
}

func TestFieldMissing(t *testing.T) {
	err := FieldMissing("RightAscension")
	assert.Equal(t, "Field 'RightAscension' not found", err.Message)
	assert.Equal(t, KindDriverCustom, err.Kind)
}

func TestFieldInvalid(t *testing.T) {
	err := FieldInvalid("Azimuth")
	assert.Equal(t, "Invalid 'Azimuth' field", err.Message)
	assert.Equal(t, KindDriverCustom, err.Kind)
}
