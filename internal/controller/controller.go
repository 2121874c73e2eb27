package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/models"
	"github.com/stockpeek/edge-gateway/internal/service"
)

const (
	headerCache      = "X-Cache"
	headerMarketOpen = "X-Market-Open"
	headerCacheTTL   = "X-Cache-TTL"
)

type Controller struct {
	zapLogger   *zap.SugaredLogger
	authService *service.AuthService
	market      *service.Router
}

func NewController(logger *zap.SugaredLogger, authService *service.AuthService, market *service.Router) *Controller {
	return &Controller{
		zapLogger:   logger,
		authService: authService,
		market:      market,
	}
}

// (GET /api/health).
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// (POST /api/auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	result, err := c.authService.Login(ctx.Request().Context(), ctx.RealIP(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.LoginResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
	})
}

// (GET /api/auth/verify).
func (c *Controller) Verify(ctx echo.Context) error {
	authz := ctx.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || token == "" {
		return ctx.JSON(http.StatusUnauthorized, models.VerifyResponse{Valid: false, Error: "missing bearer token"})
	}

	username, err := c.authService.Verify(token)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.VerifyResponse{Valid: false, Error: err.Error()})
	}

	return ctx.JSON(http.StatusOK, models.VerifyResponse{Valid: true, Username: username})
}

// (GET /api/quote).
func (c *Controller) Quote(ctx echo.Context) error {
	symbol := ctx.QueryParam("symbol")
	if symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol parameter is required")
	}

	result, err := c.market.Quote(ctx.Request().Context(), symbol)
	if err != nil {
		return err
	}
	return writeMarketResult(ctx, result)
}

// (GET /api/statistics).
func (c *Controller) Statistics(ctx echo.Context) error {
	symbol := ctx.QueryParam("symbol")
	if symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol parameter is required")
	}

	result, err := c.market.Statistics(ctx.Request().Context(), symbol)
	if err != nil {
		return err
	}
	return writeMarketResult(ctx, result)
}

// (GET /api/time_series).
func (c *Controller) TimeSeries(ctx echo.Context) error {
	symbol := ctx.QueryParam("symbol")
	if symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol parameter is required")
	}

	result, err := c.market.TimeSeries(
		ctx.Request().Context(),
		symbol,
		ctx.QueryParam("interval"),
		ctx.QueryParam("outputsize"),
	)
	if err != nil {
		return err
	}
	return writeMarketResult(ctx, result)
}

// (GET /api/finnhub/*).
func (c *Controller) Finnhub(ctx echo.Context) error {
	if ctx.QueryParam("symbol") == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol parameter is required")
	}

	result, err := c.market.Finnhub(ctx.Request().Context(), ctx.Param("*"), ctx.QueryParams())
	if err != nil {
		return err
	}
	return writeMarketResult(ctx, result)
}

func writeMarketResult(ctx echo.Context, result *service.Result) error {
	h := ctx.Response().Header()
	h.Set(headerCache, result.CacheState)
	h.Set(headerMarketOpen, strconv.FormatBool(result.MarketOpen))
	h.Set(headerCacheTTL, strconv.Itoa(int(result.TTL.Fresh.Seconds())))

	return ctx.Blob(http.StatusOK, result.ContentType, result.Body)
}
