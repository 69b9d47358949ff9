// Package router assembles the HTTP route table.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "votp_backend/internal/feature/auth/transport/handler"
	commentshandler "votp_backend/internal/feature/comments/transport/handler"
	platformhandler "votp_backend/internal/platform/http/handler"
	jwtauth "votp_backend/internal/platform/jwt"
)

// NewRouter wires all endpoints. Reading comments is public; everything that
// writes or touches account state sits behind the JWT middleware.
func NewRouter(validator jwtauth.Validator,
	authHandler *authhandler.AuthHandler,
	commentsHandler *commentshandler.CommentsHandler) *gin.Engine {

	r := gin.Default()
	// Browser extensions and widgets call this API from any origin.
	r.Use(cors.Default())

	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)

	r.GET("/auth/email-check", authHandler.CheckEmail)
	r.POST("/auth/request-code", authHandler.RequestCode)
	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)

	r.GET("/comments", commentsHandler.List)
	r.GET("/comments/:id/replies", commentsHandler.ListReplies)

	auth := r.Group("/")
	auth.Use(jwtauth.AuthRequired(validator))
	{
		auth.GET("/me", authHandler.Me)
		auth.PATCH("/me", authHandler.UpdateProfile)
		auth.DELETE("/me", authHandler.DeleteAccount)
		auth.GET("/me/comments", commentsHandler.ListMine)

		auth.POST("/comments", commentsHandler.Create)
		auth.PUT("/comments/:id", commentsHandler.Update)
		auth.DELETE("/comments/:id", commentsHandler.Delete)
	}

	return r
}
