package dto

// ProfileUpdateReq represents the request body for PATCH /me. Absent fields
// are left untouched.
type ProfileUpdateReq struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}
