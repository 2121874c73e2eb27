package controller

import (
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterHandlers wires the full API surface as an explicit route
// table. Market-data routes are deliberately served without token
// authentication; only the auth endpoints implement the credential
// protocol.
func RegisterHandlers(e *echo.Echo, c *Controller) {
	g := e.Group("/api")

	g.GET("/health", c.Health)

	g.POST("/auth/login", c.Login)
	g.GET("/auth/verify", c.Verify)

	g.GET("/quote", c.Quote)
	g.GET("/statistics", c.Statistics)
	g.GET("/time_series", c.TimeSeries)
	g.GET("/finnhub/*", c.Finnhub)
}
