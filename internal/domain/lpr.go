package domain

type LPRRequestDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type LPRResponseDTO struct {
	DetectedPlate string  `json:"detected_plate"`
	Confidence    float32 `json:"confidence,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	// ActiveTransaction is set when the plate already has a PARKED session.
	ActiveTransaction *Transaction `json:"active_transaction,omitempty"`
}
