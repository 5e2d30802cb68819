package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-trading-insights/internal/analysis"
	"github.com/i474232898/weather-trading-insights/internal/narrative"
	"github.com/i474232898/weather-trading-insights/internal/store"
	"github.com/i474232898/weather-trading-insights/internal/weather"
)

var validate = validator.New()

const (
	msgQueryRequired     = "Query parameter is required"
	msgCoordsRequired    = "Latitude and longitude are required"
	msgFavoriteRequired  = "Name, latitude, and longitude are required"
	msgAnalysisRequired  = "Location and weather data are required"
	msgFavoriteExists    = "Location already in favorites"
	msgFavoriteNotFound  = "Favorite not found"
	msgFavoriteDeleted   = "Favorite deleted successfully"
	msgLocationFailed    = "Failed to fetch location data"
	msgWeatherFailed     = "Failed to fetch weather data"
	msgExtendedFailed    = "Failed to fetch extended weather data"
	msgFavoritesFailed   = "Failed to fetch favorites"
	msgAddFavoriteFailed = "Failed to add favorite"
	msgDeleteFailed      = "Failed to delete favorite"
)

// WeatherService is the subset of weather.Service the handlers use.
type WeatherService interface {
	Now() time.Time
	Search(ctx context.Context, query string) ([]weather.Location, error)
	Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	Extended(ctx context.Context, lat, lon float64) (weather.RawWeatherBundle, error)
	ListFavorites(ctx context.Context) ([]weather.Favorite, error)
	AddFavorite(ctx context.Context, in weather.FavoriteInput) (weather.Favorite, error)
	RemoveFavorite(ctx context.Context, id int64) error
}

// Narrator produces model-written commentary.
type Narrator interface {
	Available() bool
	Provider() string
	Generate(ctx context.Context, prompt string) (narrative.Result, error)
}

type handler struct {
	service  WeatherService
	narrator Narrator
	log      logrus.FieldLogger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherService, narrator Narrator, log logrus.FieldLogger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &handler{
		service:  service,
		narrator: narrator,
		log:      log.WithField("component", "http"),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-trading-insights",
		})
	})

	api := app.Group("/api")

	api.Get("/geocode", h.geocode)
	api.Get("/weather", h.forecast)
	api.Get("/weather/extended", h.extended)

	api.Get("/favorites", h.listFavorites)
	api.Post("/favorites", h.addFavorite)
	api.Delete("/favorites/:id", h.deleteFavorite)

	api.Post("/trading/analyze", h.analyze)
	api.Get("/trading/analysis", h.analyzeLocation)
	api.Post("/trading/ai-analysis", h.aiAnalysis)
}

// ErrorHandler renders framework errors (unknown routes, bad methods, panics
// recovered by middleware) as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// fail writes the {"error": message} body used by every domain failure.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (h *handler) geocode(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return fail(c, fiber.StatusBadRequest, msgQueryRequired)
	}

	locs, err := h.service.Search(c.UserContext(), query)
	if err != nil {
		h.log.WithError(err).WithField("query", query).Error("geocoding failed")
		return fail(c, fiber.StatusInternalServerError, msgLocationFailed)
	}
	if locs == nil {
		locs = []weather.Location{}
	}
	return c.JSON(fiber.Map{"results": locs})
}

func (h *handler) forecast(c *fiber.Ctx) error {
	lat, lon, ok := parseCoordinates(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, msgCoordsRequired)
	}

	doc, err := h.service.Forecast(c.UserContext(), lat, lon)
	if err != nil {
		h.log.WithError(err).Error("forecast fetch failed")
		return fail(c, fiber.StatusInternalServerError, msgWeatherFailed)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(doc)
}

func (h *handler) extended(c *fiber.Ctx) error {
	lat, lon, ok := parseCoordinates(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, msgCoordsRequired)
	}

	bundle, err := h.service.Extended(c.UserContext(), lat, lon)
	if err != nil {
		h.log.WithError(err).Error("extended fetch failed")
		return fail(c, fiber.StatusInternalServerError, msgExtendedFailed)
	}
	return c.JSON(bundle)
}

func (h *handler) listFavorites(c *fiber.Ctx) error {
	favs, err := h.service.ListFavorites(c.UserContext())
	if err != nil {
		h.log.WithError(err).Error("list favorites failed")
		return fail(c, fiber.StatusInternalServerError, msgFavoritesFailed)
	}
	if favs == nil {
		favs = []weather.Favorite{}
	}
	return c.JSON(favs)
}

// favoriteRequest is the body of POST /api/favorites. Coordinates are
// pointers so that 0 is accepted while absence is rejected.
type favoriteRequest struct {
	Name      string   `json:"name" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Country   string   `json:"country"`
}

func (h *handler) addFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, msgFavoriteRequired)
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, msgFavoriteRequired)
	}

	fav, err := h.service.AddFavorite(c.UserContext(), weather.FavoriteInput{
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Country:   req.Country,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fail(c, fiber.StatusConflict, msgFavoriteExists)
		}
		h.log.WithError(err).Error("add favorite failed")
		return fail(c, fiber.StatusInternalServerError, msgAddFavoriteFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(fav)
}

func (h *handler) deleteFavorite(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusNotFound, msgFavoriteNotFound)
	}

	if err := h.service.RemoveFavorite(c.UserContext(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, msgFavoriteNotFound)
		}
		h.log.WithError(err).Error("delete favorite failed")
		return fail(c, fiber.StatusInternalServerError, msgDeleteFailed)
	}
	return c.JSON(fiber.Map{"message": msgFavoriteDeleted})
}

// analysisRequest is the body shared by the analyze and ai-analysis routes.
// computedStats from older clients is accepted and ignored; statistics are
// always recomputed from weatherData.
type analysisRequest struct {
	Location      *weather.Location         `json:"location"`
	WeatherData   *weather.RawWeatherBundle `json:"weatherData"`
	ComputedStats json.RawMessage           `json:"computedStats,omitempty"`
}

func (h *handler) bindAnalysis(c *fiber.Ctx) (analysisRequest, bool) {
	var req analysisRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false
	}
	return req, req.Location != nil && req.WeatherData != nil
}

func (h *handler) analyze(c *fiber.Ctx) error {
	req, ok := h.bindAnalysis(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, msgAnalysisRequired)
	}
	return c.JSON(analysis.Generate(*req.Location, *req.WeatherData, h.service.Now()))
}

func (h *handler) analyzeLocation(c *fiber.Ctx) error {
	lat, lon, ok := parseCoordinates(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, msgCoordsRequired)
	}

	bundle, err := h.service.Extended(c.UserContext(), lat, lon)
	if err != nil {
		h.log.WithError(err).Error("extended fetch for analysis failed")
		return fail(c, fiber.StatusInternalServerError, msgExtendedFailed)
	}

	loc := weather.Location{
		Name:      c.Query("name"),
		Country:   c.Query("country"),
		Latitude:  lat,
		Longitude: lon,
	}
	if loc.Name == "" {
		loc.Name = weather.CoordinateKey(lat, lon)
	}
	return c.JSON(analysis.Generate(loc, bundle, h.service.Now()))
}

func (h *handler) aiAnalysis(c *fiber.Ctx) error {
	req, ok := h.bindAnalysis(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, msgAnalysisRequired)
	}

	now := h.service.Now()
	stats := analysis.ComputeStatistics(*req.WeatherData, now)

	if h.narrator == nil || !h.narrator.Available() {
		return c.JSON(fiber.Map{
			"available":      false,
			"message":        narrative.NotConfiguredMessage,
			"fallbackAdvice": narrative.FallbackAdvice(*req.Location, &stats),
		})
	}

	var forecast weather.SeriesDocument
	if req.WeatherData.Forecast != nil {
		forecast = *req.WeatherData.Forecast
	}
	prompt := narrative.BuildTradingPrompt(*req.Location, forecast, stats, now)

	result, err := h.narrator.Generate(c.UserContext(), prompt)
	if err != nil {
		if errors.Is(err, narrative.ErrUnknownProvider) {
			return c.JSON(fiber.Map{
				"available": false,
				"message":   "Unknown LLM provider: " + h.narrator.Provider(),
			})
		}

		message, details := narrative.Classify(err)
		h.log.WithError(err).WithFields(logrus.Fields{
			"provider": h.narrator.Provider(),
			"location": req.Location.Name,
		}).Error("ai analysis failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":          message,
			"details":        details,
			"provider":       h.narrator.Provider(),
			"fallbackAdvice": narrative.FallbackAdvice(*req.Location, &stats),
		})
	}

	return c.JSON(fiber.Map{
		"available":   true,
		"analysis":    result.Text,
		"generatedAt": h.service.Now().UTC(),
		"provider":    h.narrator.Provider(),
		"model":       result.Model,
		"disclaimer":  narrative.Disclaimer,
	})
}

// parseCoordinates reads the lat and lon query parameters.
func parseCoordinates(c *fiber.Ctx) (lat, lon float64, ok bool) {
	latStr, lonStr := strings.TrimSpace(c.Query("lat")), strings.TrimSpace(c.Query("lon"))
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
