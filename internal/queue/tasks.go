package queue

const TypePinVerify = "pin:verify"

type PinVerifyPayload struct {
	DoorKey       string `json:"door_key"`
	Pin           string `json:"pin"`
	CorrelationID string `json:"correlation_id"`
}
