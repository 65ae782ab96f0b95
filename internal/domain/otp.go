package domain

import "time"

// OtpPurpose distingue flujos concurrentes de OTP para el mismo subject.
type OtpPurpose string

const (
	OtpPurposeRegister      OtpPurpose = "REGISTER"
	OtpPurposeResetPassword OtpPurpose = "RESET_PASSWORD"
)

// ValidOtpPurpose reporta si p es uno de los purposes conocidos.
func ValidOtpPurpose(p OtpPurpose) bool {
	return p == OtpPurposeRegister || p == OtpPurposeResetPassword
}

// OtpToken es un codigo de un solo uso emitido contra un subject (email)
// y un purpose. Como maximo un token activo por (subject, purpose):
// la emision reemplaza cualquier token previo de la misma clave.
type OtpToken struct {
	ID        int64      `json:"id"`
	Subject   string     `json:"subject"`
	Purpose   OtpPurpose `json:"purpose"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}
