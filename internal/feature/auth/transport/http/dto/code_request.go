package dto

// CodeReq represents the request body for the /auth/request-code endpoint.
type CodeReq struct {
	Email string `json:"email" binding:"required,email"`
}

// EmailCheckReq represents the query parameters of /auth/email-check.
type EmailCheckReq struct {
	Email string `form:"email" binding:"required,email"`
}
