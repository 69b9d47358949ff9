// Package dto defines data transfer objects for the auth feature's HTTP
// transport layer.
package dto

// SignupReq represents the request body for the /auth/signup endpoint. The
// code must be the 6-digit value mailed by /auth/request-code.
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6,numeric"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}
