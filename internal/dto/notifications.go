package dto

// SendWhatsAppRequest is the payload of POST /notifications/whatsapp.
type SendWhatsAppRequest struct {
	ToPhone string `json:"to_phone"`
	Message string `json:"message"`
}
